//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// CreateTestWorkspace creates the directory the app pages through
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir
	return tmpDir, nil
}

// CreateTextFiles writes n text files named page-000.txt and up, each
// holding a line that names it
func (tf *TUITestFramework) CreateTextFiles(n int) error {
	if tf.workspace == "" {
		return fmt.Errorf("workspace not created")
	}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("page-%03d.txt", i)
		body := fmt.Sprintf("this is page number %d\n", i)
		if err := os.WriteFile(filepath.Join(tf.workspace, name), []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes a single file into the workspace
func (tf *TUITestFramework) WriteFile(name, contents string) error {
	return os.WriteFile(filepath.Join(tf.workspace, name), []byte(contents), 0o644)
}

// RemoveFile deletes a file from the workspace
func (tf *TUITestFramework) RemoveFile(name string) error {
	return os.Remove(filepath.Join(tf.workspace, name))
}
