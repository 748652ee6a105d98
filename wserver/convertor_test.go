package wserver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUIDataByKind(t *testing.T) {
	batch := &UIData{Type: messageTypeNewEvent}
	batch.AddEvent(issueRecord(1, 100))
	batch.AddEvent(transferRecord(2, 50))
	batch.AddEvent(issueRecord(3, 200))

	kinds := batch.byKind()
	assert.Equal(t, 2, len(kinds))
	assert.Equal(t, 2, len(kinds["issue"].Events))
	assert.Equal(t, 1, len(kinds["transfer"].Events))
	assert.Equal(t, "issue", kinds["issue"].Type)

	bs, err := json.Marshal(kinds["transfer"])
	assert.NoError(t, err)
	assert.Contains(t, string(bs), "\"type\":\"transfer\"")
	assert.Contains(t, string(bs), "\"seq\":2")
}
