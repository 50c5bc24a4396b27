package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingCareerService.Error(), ErrInvalidPorts.Error())
}

func TestErrMissingCareerService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingCareerService.Error(), "career service")
}

func TestErrInvalidPorts_Message(t *testing.T) {
	assert.Contains(t, ErrInvalidPorts.Error(), "invalid ports")
}
