package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListenAddr(t *testing.T) {
	cfg := Config{Port: "3000"}
	assert.Equal(t, ":3000", cfg.ListenAddr())
}
