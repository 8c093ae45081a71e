// SPDX-License-Identifier: MIT

package lexicon

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWriterOmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Write(&Entry{Word: "dictionary"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	got := strings.TrimSpace(buf.String())
	want := `{"word":"dictionary"}`
	if got != want {
		t.Errorf("Write() = %s, want %s", got, want)
	}
}

func TestWriterEntryExample(t *testing.T) {
	// Scenario 1 from spec §8.
	e := &Entry{Word: "dictionary", Syllables: 4, Sources: []string{"wikt"}}
	e.AddPOS(POSNoun)
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Write(e); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"word":      "dictionary",
		"pos":       []interface{}{"noun"},
		"syllables": float64(4),
		"sources":   []interface{}{"wikt"},
	}
	if len(got) != len(want) {
		t.Fatalf("Write() = %v, want %v", got, want)
	}
	for k, v := range want {
		gv, ok := got[k]
		if !ok {
			t.Fatalf("missing key %q in %v", k, got)
		}
		gj, _ := json.Marshal(gv)
		wj, _ := json.Marshal(v)
		if string(gj) != string(wj) {
			t.Errorf("key %q: got %s, want %s", k, gj, wj)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	e := &Entry{
		Word: "woordenboek",
		POS:  []string{POSNoun},
		Labels: map[string][]string{
			LabelRegister: {"informal"},
		},
		Morphology: &Morphology{Kind: MorphCompound, Components: []string{"woord", "boek"}},
	}
	e.IsPhrase = false
	e.IsInformal = true

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Write(e); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	r := NewReader(&buf)
	got, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if got.Word != e.Word || len(got.POS) != 1 || got.POS[0] != POSNoun {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.IsInformal {
		t.Errorf("round trip lost is_informal flag")
	}
	if got.Morphology == nil || got.Morphology.Kind != MorphCompound {
		t.Errorf("round trip lost morphology: %+v", got.Morphology)
	}
}

func TestAddPOSDeduplicates(t *testing.T) {
	var e Entry
	e.AddPOS(POSNoun)
	e.AddPOS(POSVerb)
	e.AddPOS(POSNoun)
	want := []string{POSNoun, POSVerb}
	if len(e.POS) != len(want) || e.POS[0] != want[0] || e.POS[1] != want[1] {
		t.Errorf("AddPOS() = %v, want %v", e.POS, want)
	}
}

func TestAddLabelDeduplicatesPerCategory(t *testing.T) {
	var e Entry
	e.AddLabel(LabelRegister, "vulgar")
	e.AddLabel(LabelRegister, "informal")
	e.AddLabel(LabelRegister, "vulgar")
	e.AddLabel(LabelTemporal, "archaic")
	if len(e.Labels[LabelRegister]) != 2 {
		t.Errorf("Labels[register] = %v", e.Labels[LabelRegister])
	}
	if !e.HasLabel(LabelRegister, "vulgar") || e.HasLabel(LabelRegister, "rare") {
		t.Errorf("HasLabel mismatch: %v", e.Labels)
	}
	if !e.HasAnyLabel(LabelTemporal) || e.HasAnyLabel(LabelDomain) {
		t.Errorf("HasAnyLabel mismatch: %v", e.Labels)
	}
}
