package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules file: %v", err)
	}
	return path
}

func TestLoadDictionariesOverridesOneSet(t *testing.T) {
	path := writeRulesFile(t, `{"document_types": ["contrato", "cessao"]}`)

	dicts, err := LoadDictionaries(path)
	if err != nil {
		t.Fatalf("LoadDictionaries returned error: %v", err)
	}
	want := []string{"CONTRATO", "CESSAO"}
	if len(dicts.DocumentTypes) != len(want) {
		t.Fatalf("DocumentTypes = %v, want %v", dicts.DocumentTypes, want)
	}
	for i, token := range want {
		if dicts.DocumentTypes[i] != token {
			t.Errorf("DocumentTypes[%d] = %q, want %q", i, dicts.DocumentTypes[i], token)
		}
	}

	// Absent sets keep the built-in defaults once merged into a registry.
	merged := dicts.merged()
	if len(merged.FundKeywords) == 0 {
		t.Error("merged dictionaries lost the default fund keywords")
	}
}

func TestLoadDictionariesRejectsBadFiles(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"unknown key", `{"typos": ["A"]}`},
		{"empty set", `{"document_types": []}`},
		{"non-string token", `{"document_types": [42]}`},
		{"token with spaces", `{"document_types": ["TWO WORDS"]}`},
		{"not json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeRulesFile(t, tc.content)
			if _, err := LoadDictionaries(path); err == nil {
				t.Errorf("LoadDictionaries accepted %s", tc.name)
			}
		})
	}
}

func TestLoadDictionariesMissingFile(t *testing.T) {
	if _, err := LoadDictionaries(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadDictionaries accepted a missing file")
	}
}
