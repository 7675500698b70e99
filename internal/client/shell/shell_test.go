package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/secretkeeper/internal/client/storage"
	"github.com/atinyakov/secretkeeper/internal/secrets"
)

const card1 = "CreditCard,card1,folderA,Jane Doe,1234567890123456,123,12/25\n"

func newShell(t *testing.T, seed, input string) (*Shell, *bytes.Buffer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.txt")
	if seed != "" {
		require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))
	}
	out := &bytes.Buffer{}
	sh, err := New(strings.NewReader(input), out, storage.NewFileStore(path, nil), nil)
	require.NoError(t, err)
	return sh, out, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestAdd_RepromptsUntilValid(t *testing.T) {
	input := strings.Join([]string{
		"add",
		"card#1", // illegal name
		"card1",
		"folderA",
		"Jane Doe",
		"1234", // short number
		"1234567890123456",
		"12a",
		"123",
		"13/25",
		"12/25",
		"exit",
	}, "\n") + "\n"
	sh, out, path := newShell(t, "", input)

	sh.Run()

	assert.Equal(t, card1, readFile(t, path))
	assert.Contains(t, out.String(), "Secret added")
	assert.Contains(t, out.String(), secrets.ErrInvalidCardNumber.Error())
	assert.True(t, strings.HasSuffix(out.String(), "Bye\n"))
}

func TestAdd_RejectsDuplicateName(t *testing.T) {
	input := "add\ncard1\ncard2\n\nJohn\n6543210987654321\n321\n01/30\n"
	sh, out, path := newShell(t, card1, input)

	sh.Run()

	assert.Equal(t, card1+"CreditCard,card2,unlinked,John,6543210987654321,321,01/30\n", readFile(t, path))
	assert.Contains(t, out.String(), "Name must be new")
}

func TestListRevealFolders(t *testing.T) {
	seed := card1 + "CreditCard,card2,travel,John,6543210987654321,321,01/30\n"
	sh, out, _ := newShell(t, seed, "")

	sh.Exec("list")
	assert.Equal(t, "card1 [folderA] (CreditCard)\ncard2 [travel] (CreditCard)\n", out.String())

	out.Reset()
	sh.Exec("list travel")
	assert.Equal(t, "card2 [travel] (CreditCard)\n", out.String())

	out.Reset()
	sh.Exec("list nowhere")
	assert.Equal(t, "No secrets\n", out.String())

	out.Reset()
	sh.Exec("folders")
	assert.Equal(t, "folderA\ntravel\n", out.String())

	out.Reset()
	sh.Exec("reveal card1")
	assert.Equal(t, "Name: card1\n"+
		"Full Name: Jane Doe\n"+
		"Credit Card Number: 1234567890123456\n"+
		"CVC Number: 123\n"+
		"Expiry Date: 12/25\n", out.String())

	out.Reset()
	sh.Exec("reveal ghost")
	assert.Equal(t, "Secret not found\n", out.String())
}

func TestEdit(t *testing.T) {
	// keep full name and number, bad cvc then good cvc, keep expiry
	input := "\n\n45\n456\n\n"
	sh, out, path := newShell(t, card1, input)

	assert.True(t, sh.Exec("edit card1"))

	assert.Equal(t, "CreditCard,card1,folderA,Jane Doe,1234567890123456,456,12/25\n", readFile(t, path))
	assert.Contains(t, out.String(), "Secret updated")
}

func TestRenameMoveDelete(t *testing.T) {
	// answers: new name, then folder (empty unlinks)
	sh, out, path := newShell(t, card1, "visa\n\n")

	sh.Exec("rename card1")
	sh.Exec("move visa")
	assert.Equal(t, "CreditCard,visa,unlinked,Jane Doe,1234567890123456,123,12/25\n", readFile(t, path))

	sh.Exec("delete visa")
	assert.Equal(t, "", readFile(t, path))

	out.Reset()
	sh.Exec("delete visa")
	sh.Exec("rename visa")
	sh.Exec("move visa")
	assert.Equal(t, "Secret not found\nSecret not found\nSecret not found\n", out.String())
}

func TestRename_RepromptsIllegalName(t *testing.T) {
	sh, out, path := newShell(t, card1, "bad_name\ngood name\n")

	sh.Exec("rename card1")

	assert.Contains(t, out.String(), nameHint)
	assert.Equal(t, "CreditCard,good name,folderA,Jane Doe,1234567890123456,123,12/25\n", readFile(t, path))
}

func TestNamesWithSpaces(t *testing.T) {
	input := strings.Join([]string{
		"add", "my card", "home bills", "Jane Doe", "1234567890123456", "123", "12/25",
		"list home bills",
		"reveal my card",
		"move my card", "old  stuff",
		"rename my card", "your card",
		"folders",
		"delete   your card  ",
		"list",
	}, "\n") + "\n"
	sh, out, path := newShell(t, "", input)

	sh.Run()

	got := out.String()
	assert.Contains(t, got, "my card [home bills] (CreditCard)\n")
	assert.Contains(t, got, "Name: my card\nFull Name: Jane Doe\n")
	assert.Contains(t, got, "old  stuff\n")
	assert.Contains(t, got, "Secret renamed")
	assert.Contains(t, got, "Secret deleted")
	assert.NotContains(t, got, "Secret not found")
	assert.Equal(t, "", readFile(t, path))
}

func TestExec_UsageAndUnknown(t *testing.T) {
	sh, out, _ := newShell(t, "", "")

	assert.True(t, sh.Exec("reveal"))
	assert.True(t, sh.Exec("frobnicate"))
	assert.True(t, sh.Exec("help"))
	assert.False(t, sh.Exec("exit"))

	got := out.String()
	assert.Contains(t, got, "Usage: reveal <name>")
	assert.Contains(t, got, "Unknown command")
	assert.Contains(t, got, "Available commands:")
}

func TestRun_StopsAtEndOfInput(t *testing.T) {
	sh, out, _ := newShell(t, "", "\nlist\n")

	sh.Run()

	assert.Equal(t, Prompt+Prompt+"No secrets\n"+Prompt+"\n", out.String())
}
