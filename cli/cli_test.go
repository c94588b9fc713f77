package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Chris4081/memauto-go-sdk/cli"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAddAndList(t *testing.T) {
	dir := t.TempDir()

	out, err := runCmd(t, "--dir", dir, "add", "the user prefers window seats.", "--keywords", "travel,seats")
	if err != nil {
		t.Fatalf("add failed: %v (%s)", err, out)
	}
	if !strings.Contains(out, "memory saved") {
		t.Errorf("unexpected add output: %q", out)
	}

	out, err = runCmd(t, "--dir", dir, "ls")
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if !strings.Contains(out, "the user prefers window seats.") {
		t.Errorf("ls should show the entry, got %q", out)
	}
	if !strings.Contains(out, "[travel,seats]") {
		t.Errorf("ls should show keywords, got %q", out)
	}
}

func TestAddRejected(t *testing.T) {
	dir := t.TempDir()
	_, err := runCmd(t, "--dir", dir, "add", "short")
	if err == nil {
		t.Fatal("filtered memory should make add fail")
	}
}

func TestLsEmpty(t *testing.T) {
	out, err := runCmd(t, "--dir", t.TempDir(), "ls")
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if !strings.Contains(out, "no memories stored") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestWipeRequiresConfirmation(t *testing.T) {
	_, err := runCmd(t, "--dir", t.TempDir(), "wipe")
	if err == nil {
		t.Fatal("wipe without --yes must fail")
	}
}

func TestRmOutOfRange(t *testing.T) {
	_, err := runCmd(t, "--dir", t.TempDir(), "rm", "3")
	if err == nil {
		t.Fatal("rm beyond the list must fail")
	}
}

func TestGuidePrints(t *testing.T) {
	out, err := runCmd(t, "--dir", t.TempDir(), "guide", "de")
	if err != nil {
		t.Fatalf("guide failed: %v", err)
	}
	if !strings.Contains(out, "save:") {
		t.Errorf("guide output should teach the save syntax, got %q", out)
	}
}

func TestMatchCommand(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCmd(t, "--dir", dir, "add", "the user rides a bicycle.", "--keywords", "bike,bicycle"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	out, err := runCmd(t, "--dir", dir, "match", "my bike broke")
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !strings.Contains(out, "the user rides a bicycle.") {
		t.Errorf("match should list the entry, got %q", out)
	}

	out, err = runCmd(t, "--dir", dir, "match", "nothing relevant")
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !strings.Contains(out, "no matches") {
		t.Errorf("unexpected output: %q", out)
	}
}
