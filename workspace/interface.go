// Package workspace provides request scoped directories on the host file system
package workspace

import (
	"bytes"
	"crypto/rand"
	"encoding/base32"
	"errors"
)

const randIDLength = 12

var (
	// ErrInvalidPath is returned when a file name escapes the workspace directory
	ErrInvalidPath = errors.New("workspace: invalid path")

	errUniqueIDNotGenerated = errors.New("unique workspace id does not exists after tried 50 times")
)

// Manager hands out workspaces exclusively owned by a single request
type Manager interface {
	Acquire() (*Workspace, error) // Acquire creates an empty, unique directory
	Release(*Workspace)           // Release removes the directory and everything in it
}

func generateID() (string, error) {
	b := make([]byte, randIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := base32.NewEncoder(base32.StdEncoding.WithPadding(base32.NoPadding), &buf)
	if _, err := enc.Write(b); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// generateUniqueID calls create with fresh ids until it does not report an existing entry
func generateUniqueID(create func(string) (bool, error)) (string, error) {
	for range [50]struct{}{} {
		id, err := generateID()
		if err != nil {
			return "", err
		}
		exists, err := create(id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", errUniqueIDNotGenerated
}
