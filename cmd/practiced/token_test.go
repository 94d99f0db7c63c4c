package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicflow/practice/pkg/config"
	"github.com/clinicflow/practice/pkg/jwt"
)

func TestTokenCommand(t *testing.T) {
	config.ResetCache()
	t.Cleanup(config.ResetCache)
	t.Setenv("JWT_SIGNING_KEY", "cli-test-key")

	userID, professionalID := uuid.New(), uuid.New()

	var out bytes.Buffer
	cmd := newTokenCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--user", userID.String(), "--professional", professionalID.String()})
	require.NoError(t, cmd.Execute())

	svc, err := jwt.New(jwt.Config{SigningKey: "cli-test-key", Issuer: "practiced"})
	require.NoError(t, err)
	claims, err := svc.Parse(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, professionalID, claims.ProfessionalID)

	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenCommand_InvalidIDs(t *testing.T) {
	cmd := newTokenCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--user", "nope", "--professional", uuid.NewString()})
	assert.Error(t, cmd.Execute())
}
