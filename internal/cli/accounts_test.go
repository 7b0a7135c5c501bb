package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execRoot runs the full command tree against a fresh sqlite ledger in a
// temp dir, or against db when given.
func execRoot(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	if db == "" {
		db = filepath.Join(t.TempDir(), "referral.db")
	}
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--driver", "sqlite3", "--db", db}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "referral.db")
}

func writeBatch(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}

func TestCreateCommand(t *testing.T) {
	db := tempDB(t)

	out, err := execRoot(t, db, "create", "1", "0")
	require.NoError(t, err)
	assert.Equal(t, "✓ Created account 1 (introducer 0, beneficiary -)\n", out)

	out, err = execRoot(t, db, "create", "2", "1")
	require.NoError(t, err)
	assert.Equal(t, "✓ Created account 2 (introducer 1, beneficiary 1)\n", out)
}

func TestCreateCommandJSON(t *testing.T) {
	db := tempDB(t)
	_, err := execRoot(t, db, "create", "1", "0")
	require.NoError(t, err)
	_, err = execRoot(t, db, "create", "2", "1")
	require.NoError(t, err)

	out, err := execRoot(t, db, "--format", "json", "create", "3", "1")
	require.NoError(t, err)

	var view AccountView
	resp := decodeResponse(t, out, &view)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(3), view.ID)
	require.NotNil(t, view.IntroducerID)
	assert.Equal(t, int64(1), *view.IntroducerID)
	assert.Nil(t, view.BeneficiaryID, "second referral of 1 has no beneficiary")
}

func TestCreateCommandValidation(t *testing.T) {
	out, err := execRoot(t, "", "--format", "json", "create", "abc", "0")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "account_id")
}

func TestCreateCommandConflict(t *testing.T) {
	db := tempDB(t)
	_, err := execRoot(t, db, "create", "1", "0")
	require.NoError(t, err)

	out, err := execRoot(t, db, "create", "1", "0")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_CONFLICT]")
}

func TestCreateCommandMissingArgs(t *testing.T) {
	_, err := execRoot(t, "", "create", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg")
}

func TestBulkCommand(t *testing.T) {
	batch := writeBatch(t, "batch.json", `[
		{"account_id": 1, "introducer_id": 0},
		{"account_id": 2, "introducer_id": 1},
		{"account_id": 3, "introducer_id": 1},
		{"account_id": 4, "introducer_id": 1}
	]`)
	db := tempDB(t)

	out, err := execRoot(t, db, "bulk", batch)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Created 4 account(s)")
	assert.Contains(t, out, "ID  INTRODUCER  BENEFICIARY")

	out, err = execRoot(t, db, "--format", "json", "list")
	require.NoError(t, err)

	var views []AccountView
	decodeResponse(t, out, &views)
	require.Len(t, views, 4)
	assert.Nil(t, views[0].BeneficiaryID)
	assert.Equal(t, int64(1), *views[1].BeneficiaryID)
	assert.Nil(t, views[2].BeneficiaryID)
	assert.Equal(t, int64(1), *views[3].BeneficiaryID)
}

func TestBulkCommandYAML(t *testing.T) {
	batch := writeBatch(t, "batch.yaml", `
- account_id: 1
  introducer_id: 0
- account_id: 2
  introducer_id: 1
`)

	out, err := execRoot(t, "", "--format", "json", "bulk", batch)
	require.NoError(t, err)

	var result BulkResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, result.Results, 2)
	assert.Equal(t, int64(2), result.Results[1].ID)
	assert.Equal(t, int64(1), *result.Results[1].BeneficiaryID)
}

func TestBulkCommandRollsBack(t *testing.T) {
	batch := writeBatch(t, "batch.json", `[
		{"account_id": 1, "introducer_id": 0},
		{"account_id": 2, "introducer_id": 1},
		{"account_id": 2, "introducer_id": 1}
	]`)
	db := tempDB(t)

	out, err := execRoot(t, db, "--format", "json", "bulk", batch)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConflict, resp.Error.Code)
	assert.Equal(t, map[string]any{"index": float64(2)}, resp.Error.Details)

	out, err = execRoot(t, db, "list")
	require.NoError(t, err)
	assert.Equal(t, "No accounts.\n", out)
}

func TestBulkCommandEmptyBatch(t *testing.T) {
	batch := writeBatch(t, "batch.json", `[]`)

	out, err := execRoot(t, "", "bulk", batch)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_VALIDATION]")
}

func TestBulkCommandMissingFile(t *testing.T) {
	out, err := execRoot(t, "", "bulk", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E_NOT_FOUND]")
}

func TestBulkCommandUnparsableFile(t *testing.T) {
	batch := writeBatch(t, "batch.json", `[{"account_id": 1,`)

	out, err := execRoot(t, "", "bulk", batch)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_INVALID_BATCH]")
}

func TestListCommandEmpty(t *testing.T) {
	out, err := execRoot(t, "", "list")
	require.NoError(t, err)
	assert.Equal(t, "No accounts.\n", out)

	out, err = execRoot(t, "", "--format", "json", "list")
	require.NoError(t, err)

	var views []AccountView
	resp := decodeResponse(t, out, &views)
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, views)
}

func TestLoadBatch(t *testing.T) {
	items, err := LoadBatch(writeBatch(t, "b.json", `[{"account_id": 7, "introducer_id": "3"}]`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, json.Number("7"), items[0].AccountID)
	assert.Equal(t, "3", items[0].IntroducerID)

	items, err = LoadBatch(writeBatch(t, "b.yml", "- {account_id: 7, introducer_id: 3}\n"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].AccountID)
}

func TestFormatNullable(t *testing.T) {
	v := int64(5)
	assert.Equal(t, "5", formatNullable(&v))
	assert.Equal(t, "-", formatNullable(nil))
}
