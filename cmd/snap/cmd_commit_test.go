package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/snap/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestCommitAuthorPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		env      string
		file     string
		repoUser string
		want     string
	}{
		{name: "flag wins", flag: "flag", env: "env", file: "file", repoUser: "repo", want: "flag"},
		{name: "environment", env: "env", file: "file", repoUser: "repo", want: "env"},
		{name: "user settings file", file: "file", repoUser: "repo", want: "file"},
		{name: "repository config", repoUser: "repo", want: "repo"},
		{name: "login name", want: "tester"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initArgs := []string{}
			if tt.repoUser != "" {
				initArgs = append(initArgs, "--user", tt.repoUser)
			}
			newWorkspace(t, initArgs...)

			if tt.env != "" {
				t.Setenv("SNAP_AUTHOR", tt.env)
			}
			if tt.file != "" {
				path := filepath.Join(t.TempDir(), "config.toml")
				require.NoError(t, os.WriteFile(path, []byte("author = \""+tt.file+"\"\n"), 0o644))
				t.Setenv(envConfigFile, path)
			}

			writeWorkFile(t, "a.txt", "a\n")
			runOK(t, "add", "a.txt")
			args := []string{"commit", "-m", "msg"}
			if tt.flag != "" {
				args = append(args, "--author", tt.flag)
			}
			runOK(t, args...)

			_, c := headCommit(t)
			assert.Equal(t, tt.want, c.Author)
		})
	}
}

func TestCommitSignAndShow(t *testing.T) {
	newWorkspace(t)
	keyPath := writeTestSSHKey(t)

	writeWorkFile(t, "a.txt", "signed\n")
	runOK(t, "add", ".")
	runOK(t, "commit", "-m", "signed commit", "--sign", "--key", keyPath)

	_, c := headCommit(t)
	require.NotEmpty(t, c.Signature)
	fp, err := verifySSHCommitSignature(c.Signature, object.CommitSigningPayload(c))
	require.NoError(t, err)

	out := runOK(t, "show")
	assert.Contains(t, out, "Signature: good "+fp+"\n")
	assert.Contains(t, out, "Changes:\n  A a.txt\n")
}

func TestCommitSignKeyFromEnvironment(t *testing.T) {
	newWorkspace(t)
	t.Setenv("SNAP_SIGNING_KEY", writeTestSSHKey(t))

	writeWorkFile(t, "a.txt", "signed\n")
	runOK(t, "add", ".")
	runOK(t, "commit", "-m", "signed", "--sign")

	_, c := headCommit(t)
	_, err := verifySSHCommitSignature(c.Signature, object.CommitSigningPayload(c))
	require.NoError(t, err)
}

func TestVerifySSHCommitSignatureRejectsTampering(t *testing.T) {
	signer, _, err := newSSHCommitSigner(writeTestSSHKey(t))
	require.NoError(t, err)

	c := &object.CommitObj{TreeHash: object.HashBytes([]byte("tree")), Author: "a", Timestamp: 1, Message: "m"}
	c.Signature, err = signer(object.CommitSigningPayload(c))
	require.NoError(t, err)

	_, err = verifySSHCommitSignature(c.Signature, object.CommitSigningPayload(c))
	require.NoError(t, err)

	c.Message = "changed"
	_, err = verifySSHCommitSignature(c.Signature, object.CommitSigningPayload(c))
	assert.Error(t, err)

	_, err = verifySSHCommitSignature("pgp:whatever", nil)
	assert.Error(t, err)
}

func TestCommitSignMissingKey(t *testing.T) {
	newWorkspace(t)
	writeWorkFile(t, "a.txt", "a\n")
	runOK(t, "add", ".")

	_, _, err := runSnap(t, "commit", "-m", "x", "--sign", "--key", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read signing key")
}

func writeTestSSHKey(t *testing.T) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "test")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
	return path
}
