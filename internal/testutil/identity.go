package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/slimecats/internal/identity"
)

// Workspace is the workspace used throughout the tests.
const Workspace = "+slimecatsdo.iu8nhj2anvr74slnjei"

// NewSigner mints a fresh ed25519 author for a test.
func NewSigner(t testing.TB, shortname string) identity.Signer {
	t.Helper()
	kp, err := identity.Generate(shortname, identity.SchemeEd25519)
	require.NoError(t, err)
	s, err := identity.ParseKeypair(kp)
	require.NoError(t, err)
	return s
}
