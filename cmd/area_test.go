package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norgeo/kvsok/pkg/kartverket"
)

func TestResolveUnit(t *testing.T) {
	units := []kartverket.AdminUnit{
		{Number: "42", Name: "Agder"},
		{Number: "0301", Name: "Oslo"},
	}

	u, err := resolveUnit(units, "42")
	require.NoError(t, err)
	assert.Equal(t, "Agder", u.Name)

	u, err = resolveUnit(units, "oslo")
	require.NoError(t, err)
	assert.Equal(t, "0301", u.Number)

	_, err = resolveUnit(units, "Bergen")
	require.Error(t, err)
}
