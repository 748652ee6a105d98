package rpc

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

func (rpc *RpcController) Newrouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithFormatter(ginLogFormatter), gin.Recovery())
	router.GET("/", rpc.writeListOfEndpoints)
	// init paths here
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("status", rpc.Status)
	router.GET("maintenance", rpc.Maintenance)

	// ledger write API
	router.POST("transfer_from", rpc.TransferFrom)
	router.POST("issue", rpc.Issue)
	router.POST("redeem", rpc.Redeem)
	router.POST("burn", rpc.Burn)
	router.POST("approve", rpc.Approve)
	router.POST("batch_approve", rpc.BatchApprove)
	router.POST("set_approval_for_all", rpc.SetApprovalForAll)
	router.POST("register_class", rpc.RegisterClass)
	router.POST("register_nonce", rpc.RegisterNonce)

	// query API
	router.GET("total_supply", rpc.TotalSupply)
	router.GET("active_supply", rpc.ActiveSupply)
	router.GET("redeemed_supply", rpc.RedeemedSupply)
	router.GET("burned_supply", rpc.BurnedSupply)
	router.GET("supply", rpc.Supply)
	router.GET("balance", rpc.Balance)
	router.GET("allowance", rpc.Allowance)
	router.GET("is_approved_for", rpc.IsApprovedFor)
	router.GET("class_values", rpc.ClassValues)
	router.GET("class_metadata", rpc.ClassMetadata)
	router.GET("nonce_values", rpc.NonceValues)
	router.GET("nonce_metadata", rpc.NonceMetadata)
	router.GET("progress", rpc.Progress)

	// event API
	router.GET("events", rpc.Events)
	router.GET("event", rpc.Event)
	return router

}

// writes a list of available rpc endpoints as an html page
func (rpc *RpcController) writeListOfEndpoints(c *gin.Context) {

	routerMap := map[string]string{
		// info API
		"status":      "",
		"maintenance": "on",
		// broadcast API
		"transfer_from":        "body",
		"issue":                "body",
		"redeem":               "body",
		"burn":                 "body",
		"approve":              "body",
		"batch_approve":        "body",
		"set_approval_for_all": "body",
		"register_class":       "body",
		"register_nonce":       "body",

		// query API
		"total_supply":    "class, nonce",
		"active_supply":   "class, nonce",
		"redeemed_supply": "class, nonce",
		"burned_supply":   "class, nonce",
		"supply":          "class, nonce",
		"balance":         "address, class, nonce",
		"allowance":       "owner, spender, class, nonce",
		"is_approved_for": "owner, operator, class",
		"class_values":    "class",
		"class_metadata":  "class",
		"nonce_values":    "class, nonce",
		"nonce_metadata":  "class, nonce",
		"progress":        "class, nonce",

		"events": "from, count",
		"event":  "seq",
	}
	noArgNames := []string{}
	argNames := []string{}
	for name, args := range routerMap {
		if len(args) == 0 {
			noArgNames = append(noArgNames, name)
		} else {
			argNames = append(argNames, name)
		}
	}
	sort.Strings(noArgNames)
	sort.Strings(argNames)
	buf := new(bytes.Buffer)
	buf.WriteString("<html><body>")
	buf.WriteString("<br>Available endpoints:<br>")

	for _, name := range noArgNames {
		link := fmt.Sprintf("http://%s/%s", c.Request.Host, name)
		buf.WriteString(fmt.Sprintf("<a href=\"%s\">%s</a></br>", link, link))
	}

	buf.WriteString("<br>Endpoints that require arguments:<br>")
	for _, name := range argNames {
		link := fmt.Sprintf("http://%s/%s?", c.Request.Host, name)
		args := routerMap[name]
		argNames := strings.Split(args, ",")
		for i, argName := range argNames {
			link += argName + "=_"
			if i < len(argNames)-1 {
				link += "&"
			}
		}
		buf.WriteString(fmt.Sprintf("<a href=\"%s\">%s</a></br>", link, link))
	}
	buf.WriteString("</body></html>")
	c.Data(http.StatusOK, "text/html", buf.Bytes())
}
