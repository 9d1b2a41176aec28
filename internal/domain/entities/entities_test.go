package entities

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryRequest_OmitsUnsetOptionals(t *testing.T) {
	req := QueryRequest{Question: "hello", DepartmentID: 1}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	assert.JSONEq(t, `{"question":"hello","department_id":1}`, string(data))
	assert.NotContains(t, string(data), "null")
}

func TestQueryRequest_EncodesSetOptionals(t *testing.T) {
	req := QueryRequest{
		Question:     "What is the leave policy?",
		DepartmentID: 3,
		History: Some([]ChatTurn{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
		}),
		TopK: Some(5),
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"question": "What is the leave policy?",
		"department_id": 3,
		"history": [{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}],
		"top_k": 5
	}`, string(data))
}

func TestQueryRequest_EmptyHistoryIsSent(t *testing.T) {
	req := QueryRequest{Question: "q", DepartmentID: 1, History: Some([]ChatTurn{})}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	assert.JSONEq(t, `{"question":"q","department_id":1,"history":[]}`, string(data))
}

func TestQueryRequest_NilHistoryIsSentAsEmptyList(t *testing.T) {
	var history []ChatTurn
	req := QueryRequest{Question: "q", DepartmentID: 1, History: Some(history)}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	assert.JSONEq(t, `{"question":"q","department_id":1,"history":[]}`, string(data))
	assert.Nil(t, history)
}

func TestQueryRequest_UnmarshalKeepsAbsence(t *testing.T) {
	var req QueryRequest
	require.NoError(t, json.Unmarshal([]byte(`{"question":"q","department_id":2,"top_k":null}`), &req))

	assert.Equal(t, "q", req.Question)
	assert.Equal(t, 2, req.DepartmentID)
	assert.False(t, req.History.IsSet())
	assert.False(t, req.TopK.IsSet())

	require.NoError(t, json.Unmarshal([]byte(`{"question":"q","department_id":2,"top_k":7}`), &req))
	assert.Equal(t, 7, req.TopK.OrElse(0))
}

func TestOptional(t *testing.T) {
	none := None[int]()
	_, ok := none.Get()
	assert.False(t, ok)
	assert.Equal(t, 9, none.OrElse(9))

	some := Some(0)
	v, ok := some.Get()
	assert.True(t, ok)
	assert.Equal(t, 0, v)

	var zero Optional[string]
	assert.False(t, zero.IsSet())
}

func TestListFilter_Values(t *testing.T) {
	tests := []struct {
		name   string
		filter ListFilter
		want   string
	}{
		{"none", ListFilter{}, ""},
		{"department only", ListFilter{DepartmentID: Some(2)}, "department_id=2"},
		{"zero skip is still sent", ListFilter{Skip: Some(0)}, "skip=0"},
		{"all", ListFilter{DepartmentID: Some(2), Skip: Some(10), Limit: Some(10)}, "department_id=2&limit=10&skip=10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Values().Encode())
		})
	}
}

func TestDocument_Decode(t *testing.T) {
	body := `{"id":7,"filename":"a1.pdf","original_filename":"hr.pdf","file_type":"pdf",
		"file_size":2048,"status":"pending","vectorized":false,"chunk_count":0}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(body), &doc))

	assert.Equal(t, 7, doc.ID)
	assert.Equal(t, "hr.pdf", doc.OriginalFilename)
	assert.Equal(t, int64(2048), doc.FileSize)
	assert.Equal(t, StatusPending, doc.Status)
	assert.False(t, doc.Vectorized)
}

func TestStatusError(t *testing.T) {
	err := fmt.Errorf("deleting: %w", &StatusError{StatusCode: 404, Message: "文档不存在"})

	assert.True(t, IsNotFound(err))
	assert.Equal(t, 404, StatusCode(err))
	assert.Contains(t, err.Error(), "文档不存在")
	assert.Equal(t, 0, StatusCode(fmt.Errorf("plain")))
}

func TestDecodeError(t *testing.T) {
	err := &DecodeError{Operation: "query", Problems: []string{"answer is required"}}

	assert.True(t, IsDecodeError(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, "decoding query response: answer is required", err.Error())
	assert.False(t, IsNotFound(err))
}
