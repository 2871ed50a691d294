package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func TestDecodeObject_Plain(t *testing.T) {
	got, err := DecodeObject[payload](`{"type":"query","message":"ok"}`)
	require.NoError(t, err)
	assert.Equal(t, "query", got.Type)
}

func TestDecodeObject_MarkdownFenced(t *testing.T) {
	response := "Here you go:\n```json\n{\"type\":\"create\",\"message\":\"已添加日程\"}\n```\nAnything else?"
	got, err := DecodeObject[payload](response)
	require.NoError(t, err)
	assert.Equal(t, "create", got.Type)
	assert.Equal(t, "已添加日程", got.Message)
}

func TestDecodeObject_NoObject(t *testing.T) {
	_, err := DecodeObject[payload]("I could not produce JSON, sorry.")
	assert.Error(t, err)
}

func TestDecodeObject_MalformedObject(t *testing.T) {
	_, err := DecodeObject[payload](`{"type": "query",`)
	assert.Error(t, err)
}
