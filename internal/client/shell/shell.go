// Package shell implements the interactive client that manages a local
// vault file.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/atinyakov/secretkeeper/internal/client/storage"
	"github.com/atinyakov/secretkeeper/internal/secrets"
	"github.com/atinyakov/secretkeeper/internal/service"
	"github.com/atinyakov/secretkeeper/internal/vault"
)

// Prompt is printed before every command.
const Prompt = "secretkeeper> "

const helpText = `Available commands:
  add                      add a credit card
  list [folder]            list secrets, optionally only one folder
  folders                  list folders
  reveal <name>            show every field of a secret
  edit <name>              change card fields
  rename <name>            rename a secret, asks for the new name
  move <name>              move a secret, asks for the folder
  delete <name>            delete a secret
  help                     show this text
  exit                     leave the shell

Names and folders run to the end of the line and may contain spaces.`

// Shell reads commands from in and writes results to out. Every change is
// written back to the store before the next prompt.
type Shell struct {
	in    *bufio.Scanner
	out   io.Writer
	store *storage.FileStore
	vault *vault.Vault
	log   *zap.Logger
}

// New loads the vault from store and returns a shell over it.
func New(in io.Reader, out io.Writer, store *storage.FileStore, log *zap.Logger) (*Shell, error) {
	if log == nil {
		log = zap.NewNop()
	}
	v, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Shell{
		in:    bufio.NewScanner(in),
		out:   out,
		store: store,
		vault: v,
		log:   log,
	}, nil
}

// Run executes commands until exit or end of input.
func (s *Shell) Run() {
	for {
		fmt.Fprint(s.out, Prompt)
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return
		}
		if !s.Exec(s.in.Text()) {
			return
		}
	}
}

// splitCommand returns the first word of line and the trimmed rest.
func splitCommand(line string) (cmd, arg string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// Exec runs one command line. The argument is everything after the command
// word. It returns false when the shell should stop.
func (s *Shell) Exec(line string) bool {
	cmd, arg := splitCommand(line)
	switch cmd {
	case "":
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "add":
		s.add()
	case "list":
		s.list(arg)
	case "folders":
		for _, f := range s.vault.Folders() {
			fmt.Fprintln(s.out, f)
		}
	case "reveal":
		if s.need(arg, "reveal <name>") {
			s.reveal(arg)
		}
	case "edit":
		if s.need(arg, "edit <name>") {
			s.edit(arg)
		}
	case "rename":
		if s.need(arg, "rename <name>") {
			s.rename(arg)
		}
	case "move":
		if s.need(arg, "move <name>") {
			s.move(arg)
		}
	case "delete":
		if s.need(arg, "delete <name>") {
			s.mutate("Secret deleted", s.vault.Delete(arg))
		}
	case "exit":
		fmt.Fprintln(s.out, "Bye")
		return false
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return true
}

func (s *Shell) need(arg, usage string) bool {
	if arg == "" {
		fmt.Fprintln(s.out, "Usage:", usage)
		return false
	}
	return true
}

func (s *Shell) add() {
	in, ok := s.PromptForCreditCard()
	if !ok {
		return
	}
	card, err := secrets.AddCreditCard(in.Name, in.FolderName, in.FullName, in.Number, in.Cvc, in.ExpiryDate)
	if err == nil {
		err = s.vault.Add(card)
	}
	s.mutate("Secret added", err)
}

func (s *Shell) list(folder string) {
	items := s.vault.List(folder)
	if len(items) == 0 {
		fmt.Fprintln(s.out, "No secrets")
		return
	}
	for _, sec := range items {
		fmt.Fprintln(s.out, secrets.Summary(sec))
	}
}

func (s *Shell) rename(name string) {
	if _, err := s.vault.Get(name); err != nil {
		s.report(err)
		return
	}
	newName, ok := s.promptUntil("New name: ", nameHint, false, s.legalNewName)
	if !ok {
		return
	}
	s.mutate("Secret renamed", s.vault.Rename(name, newName))
}

func (s *Shell) move(name string) {
	if _, err := s.vault.Get(name); err != nil {
		s.report(err)
		return
	}
	folder, ok := s.prompt("Folder (leave empty for none): ")
	if !ok {
		return
	}
	s.mutate("Secret moved", s.vault.Move(name, folder))
}

func (s *Shell) reveal(name string) {
	sec, err := s.vault.Get(name)
	if err != nil {
		s.report(err)
		return
	}
	fmt.Fprintln(s.out, sec.RevealStr())
}

func (s *Shell) edit(name string) {
	sec, err := s.vault.Get(name)
	if err != nil {
		s.report(err)
		return
	}
	card, ok := sec.(*secrets.CreditCard)
	if !ok {
		s.report(fmt.Errorf("%w: %q", service.ErrNotCreditCard, name))
		return
	}
	patch, ok := s.PromptEditCreditCard()
	if !ok {
		return
	}
	updated, err := patch.Apply(card)
	if err == nil {
		err = s.vault.Replace(name, updated)
	}
	s.mutate("Secret updated", err)
}

// mutate saves the vault when err is nil and reports the outcome.
func (s *Shell) mutate(done string, err error) {
	if err != nil {
		s.report(err)
		return
	}
	if err := s.store.Save(s.vault); err != nil {
		s.log.Error("failed to save vault", zap.String("file", s.store.Path), zap.Error(err))
		fmt.Fprintln(s.out, "Failed to save vault:", err)
		return
	}
	fmt.Fprintln(s.out, done)
}

func (s *Shell) report(err error) {
	switch {
	case errors.Is(err, vault.ErrNotFound):
		fmt.Fprintln(s.out, "Secret not found")
	default:
		fmt.Fprintln(s.out, "Error:", err)
	}
}
