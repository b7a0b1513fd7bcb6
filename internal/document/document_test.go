package document

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personJSON = `{
  "@context": ["https://www.w3.org/2018/credentials/v1"],
  "type": ["VerifiableCredential"],
  "credentialSubject": {"claimType": "person_custom_property", "id": "person1", "property": "age", "value": 30}
}`

const personYAML = `
"@context":
  - https://www.w3.org/2018/credentials/v1
type: [VerifiableCredential]
credentialSubject:
  claimType: person_custom_property
  id: person1
  property: age
  value: 30
`

func wantPerson() map[string]any {
	return map[string]any{
		"@context": []any{"https://www.w3.org/2018/credentials/v1"},
		"type":     []any{"VerifiableCredential"},
		"credentialSubject": map[string]any{
			"claimType": "person_custom_property",
			"id":        "person1",
			"property":  "age",
			"value":     json.Number("30"),
		},
	}
}

func TestDecode_FormatsAgree(t *testing.T) {
	fromJSON, err := Decode([]byte(personJSON), JSON)
	require.NoError(t, err)
	fromYAML, err := Decode([]byte(personYAML), YAML)
	require.NoError(t, err)

	if diff := cmp.Diff(wantPerson(), fromJSON); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantPerson(), fromYAML); diff != "" {
		t.Errorf("YAML mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(`{"a": `), JSON)
	assert.ErrorContains(t, err, "JSON")

	_, err = Decode([]byte(`{"a": 1} {"b": 2}`), JSON)
	assert.ErrorContains(t, err, "trailing data")

	_, err = Decode([]byte("a: [1, 2"), YAML)
	assert.ErrorContains(t, err, "YAML")

	_, err = Decode([]byte("{}"), Format("toml"))
	assert.Error(t, err)
}

func TestDecode_YAMLScalars(t *testing.T) {
	got, err := Decode([]byte("n: 7\nf: 1.5\nb: true\nz: null\nd: 2024-01-02\nlist: [1, x]\n"), YAML)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n":    json.Number("7"),
		"f":    1.5,
		"b":    true,
		"z":    nil,
		"d":    "2024-01-02",
		"list": []any{json.Number("1"), "x"},
	}, got)
}

func TestDecode_KeepsLargeIntegers(t *testing.T) {
	const big = "9007199254740993" // 2^53 + 1, not representable as float64

	fromJSON, err := Decode([]byte(`{"value": `+big+`, "neg": -`+big+`}`), JSON)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": json.Number(big), "neg": json.Number("-" + big)}, fromJSON)

	fromYAML, err := Decode([]byte("value: "+big+"\nneg: -"+big+"\n"), YAML)
	require.NoError(t, err)
	assert.Equal(t, fromJSON, fromYAML)

	fromYAML, err = Decode([]byte("huge: 18446744073709551615\n"), YAML)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"huge": json.Number("18446744073709551615")}, fromYAML)
}

func TestRead_Sniffs(t *testing.T) {
	got, err := Read(strings.NewReader(personJSON), "")
	require.NoError(t, err)
	assert.Equal(t, wantPerson(), got)

	got, err = Read(strings.NewReader(personYAML), "")
	require.NoError(t, err)
	assert.Equal(t, wantPerson(), got)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"a.json": personJSON,
		"b.yaml": personYAML,
		"c.YML":  personYAML,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		got, err := ReadFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, wantPerson(), got, name)
	}

	_, err := ReadFile(filepath.Join(dir, "notes.txt"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	f, ok := FormatFromPath("x/claim.Json")
	assert.True(t, ok)
	assert.Equal(t, JSON, f)
	assert.True(t, IsCredentialFile("claim.yml"))
	assert.False(t, IsCredentialFile("claim.json.bak"))
}
