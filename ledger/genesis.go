// Copyright © 2019 Annchain Authors <EMAIL ADDRESS>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package ledger

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/common/math"
	log "github.com/sirupsen/logrus"
)

// Genesis seeds a fresh store with classes, nonces and initial holdings,
// all issued by Issuer. Applying twice is a no-op: the first run leaves a
// flag in the store.
type Genesis struct {
	Issuer  common.Address
	Classes []GenesisClass
}

type GenesisClass struct {
	Class       ClassID
	Values      []Value
	Descriptors []string
	Nonces      []GenesisNonce
}

type GenesisNonce struct {
	Nonce       NonceID
	Values      []Value
	Descriptors []string
	Holdings    []GenesisHolding
}

type GenesisHolding struct {
	Owner  common.Address
	Amount *math.BigInt
}

// Apply registers and issues everything in g. The issuer must already be
// known to the ledger's authority or registration fails.
func (g *Genesis) Apply(lg *Ledger) error {
	if lg.accessor.ReadGenesisDone() {
		log.Debug("genesis already applied, skipping")
		return nil
	}
	for _, c := range g.Classes {
		if err := lg.RegisterClass(g.Issuer, c.Class, c.Values, c.Descriptors); err != nil {
			return fmt.Errorf("genesis class %d: %v", c.Class, err)
		}
		for _, n := range c.Nonces {
			if err := lg.RegisterNonce(g.Issuer, c.Class, n.Nonce, n.Values, n.Descriptors); err != nil {
				return fmt.Errorf("genesis nonce %d/%d: %v", c.Class, n.Nonce, err)
			}
			for _, h := range n.Holdings {
				if err := lg.Issue(g.Issuer, h.Owner, c.Class, n.Nonce, h.Amount); err != nil {
					return fmt.Errorf("genesis holding %d/%d %s: %v", c.Class, n.Nonce, h.Owner.ShortString(), err)
				}
			}
		}
	}
	if err := lg.accessor.WriteGenesisDone(); err != nil {
		return fmt.Errorf("write genesis flag: %v", err)
	}
	log.WithField("classes", len(g.Classes)).Info("genesis applied")
	return nil
}

/*
	genesis file loading
*/

type genesisValueFile struct {
	String  string `json:"string"`
	Numeric string `json:"numeric"`
	Address string `json:"address"`
	Bool    bool   `json:"bool"`
}

type genesisHoldingFile struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

type genesisNonceFile struct {
	Id          uint64               `json:"id"`
	Descriptors []string             `json:"descriptors"`
	Values      []genesisValueFile   `json:"values"`
	Holdings    []genesisHoldingFile `json:"holdings"`
}

type genesisClassFile struct {
	Id          uint64             `json:"id"`
	Descriptors []string           `json:"descriptors"`
	Values      []genesisValueFile `json:"values"`
	Nonces      []genesisNonceFile `json:"nonces"`
}

type genesisFile struct {
	Issuer  string             `json:"issuer"`
	Classes []genesisClassFile `json:"classes"`
}

// LoadGenesis reads a genesis JSON file.
func LoadGenesis(genesisPath string) (*Genesis, error) {
	absPath, err := filepath.Abs(genesisPath)
	if err != nil {
		return nil, fmt.Errorf("resolve genesis path %s: %v", genesisPath, err)
	}
	data, err := ioutil.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	var file genesisFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse genesis file %s: %v", absPath, err)
	}
	return convertGenesis(&file)
}

func convertGenesis(file *genesisFile) (*Genesis, error) {
	issuer, err := common.StringToAddress(file.Issuer)
	if err != nil {
		return nil, fmt.Errorf("genesis issuer: %v", err)
	}
	g := &Genesis{Issuer: issuer}
	for _, c := range file.Classes {
		values, err := convertValues(c.Values)
		if err != nil {
			return nil, fmt.Errorf("class %d values: %v", c.Id, err)
		}
		gc := GenesisClass{
			Class:       ClassID(c.Id),
			Values:      values,
			Descriptors: c.Descriptors,
		}
		for _, n := range c.Nonces {
			values, err := convertValues(n.Values)
			if err != nil {
				return nil, fmt.Errorf("nonce %d/%d values: %v", c.Id, n.Id, err)
			}
			gn := GenesisNonce{
				Nonce:       NonceID(n.Id),
				Values:      values,
				Descriptors: n.Descriptors,
			}
			for _, h := range n.Holdings {
				owner, err := common.StringToAddress(h.Owner)
				if err != nil {
					return nil, fmt.Errorf("holding owner %s: %v", h.Owner, err)
				}
				amount, ok := math.NewBigIntFromString(h.Amount, 10)
				if !ok {
					return nil, fmt.Errorf("holding amount %s is not a number", h.Amount)
				}
				gn.Holdings = append(gn.Holdings, GenesisHolding{Owner: owner, Amount: amount})
			}
			gc.Nonces = append(gc.Nonces, gn)
		}
		g.Classes = append(g.Classes, gc)
	}
	return g, nil
}

func convertValues(in []genesisValueFile) ([]Value, error) {
	values := make([]Value, 0, len(in))
	for i, v := range in {
		out := Value{
			Str:  v.String,
			Num:  math.NewBigInt(0),
			Bool: v.Bool,
		}
		if v.Numeric != "" {
			num, ok := math.NewBigIntFromString(v.Numeric, 10)
			if !ok {
				return nil, fmt.Errorf("value %d: %s is not a number", i, v.Numeric)
			}
			out.Num = num
		}
		if v.Address != "" {
			addr, err := common.StringToAddress(v.Address)
			if err != nil {
				return nil, fmt.Errorf("value %d: %v", i, err)
			}
			out.Addr = addr
		}
		values = append(values, out)
	}
	return values, nil
}
