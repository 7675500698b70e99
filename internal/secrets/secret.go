// Package secrets defines the secret records kept by the vault, the rules
// for which values they accept, and their canonical one-line form.
package secrets

import (
	"strings"

	"github.com/atinyakov/secretkeeper/internal/codec"
)

// Unlinked is the folder name of a secret that was not put in any folder.
const Unlinked = "unlinked"

// illegalNameChars are the characters a secret name may not contain.
const illegalNameChars = "~#@*+%{}<>[]|\"_"

// Secret is implemented by every kind of secret the vault can hold.
type Secret interface {
	// UID returns the stable identifier of the secret.
	UID() string
	// Name returns the display name.
	Name() string
	// FolderName returns the folder the secret belongs to.
	FolderName() string
	// EditName renames the secret. The caller checks IsIllegalName first.
	EditName(newName string)
	// SetFolderName moves the secret to another folder.
	SetFolderName(folderName string)
	// Type returns the tag that leads the canonical line.
	Type() string
	// RevealStr renders every field, sensitive ones included.
	RevealStr() string
	// StringForDatabase renders the canonical persisted line.
	StringForDatabase() string
}

// Base carries the identity and folder shared by all secret kinds.
// Variants embed it.
type Base struct {
	uid        string
	name       string
	folderName string
}

// NewBase returns a Base named name in folderName. An empty folderName
// means Unlinked. The name is not validated here.
//
// The uid starts out as the name and survives EditName, but it is not part
// of the canonical line: a secret read back by Parse gets its current name
// as uid. It identifies a secret only within one process.
func NewBase(name, folderName string) Base {
	if folderName == "" {
		folderName = Unlinked
	}
	return Base{
		uid:        name,
		name:       name,
		folderName: folderName,
	}
}

// IsIllegalName reports whether name contains a character that secret
// names may not use.
func IsIllegalName(name string) bool {
	return strings.ContainsAny(name, illegalNameChars)
}

func (b *Base) UID() string { return b.uid }

func (b *Base) Name() string { return b.name }

func (b *Base) FolderName() string { return b.folderName }

func (b *Base) EditName(newName string) { b.name = newName }

func (b *Base) SetFolderName(folderName string) { b.folderName = folderName }

// StringForDatabase returns the name and folder fragment of a canonical line.
func (b *Base) StringForDatabase() string {
	return codec.Join(codec.Encode(b.name), codec.Encode(b.folderName))
}
