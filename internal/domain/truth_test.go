package domain

import (
	"math"
	"testing"
)

func TestTruthValueValid(t *testing.T) {
	tests := []struct {
		name string
		tv   TruthValue
		want bool
	}{
		{"both in range", TruthValue{0.5, 0.5}, true},
		{"boundaries", TruthValue{0, 1}, true},
		{"strength above one", TruthValue{1.1, 0.5}, false},
		{"negative confidence", TruthValue{0.5, -0.01}, false},
		{"nan strength", TruthValue{math.NaN(), 0.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tv.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruthValueClamp(t *testing.T) {
	tv := TruthValue{Strength: 1.4, Confidence: -0.2}.Clamp()
	if tv.Strength != 1 || tv.Confidence != 0 {
		t.Errorf("Clamp() = %+v, want strength 1 confidence 0", tv)
	}
}

func TestTruthValueEqualEpsilon(t *testing.T) {
	a := TruthValue{0.5, 0.5}
	b := TruthValue{0.5 + TVEpsilon/2, 0.5}
	c := TruthValue{0.5 + 2*TVEpsilon, 0.5}

	if !a.Equal(b) {
		t.Error("values within epsilon should be equal")
	}
	if a.Equal(c) {
		t.Error("values beyond epsilon should differ")
	}
}

func TestCombineConjunction(t *testing.T) {
	tvs := []TruthValue{
		{Strength: 0.9, Confidence: 0.9},
		{Strength: 0.8, Confidence: 0.95},
	}
	got := CombineConjunction(tvs, 0.5)

	want := TruthValue{Strength: 0.5 * 0.9 * 0.8, Confidence: 0.9}
	if !got.Equal(want) {
		t.Errorf("CombineConjunction() = %+v, want %+v", got, want)
	}
}

func TestCombineConjunctionEmpty(t *testing.T) {
	got := CombineConjunction(nil, 0.5)
	if got.Strength != 0 || got.Confidence != 0 {
		t.Errorf("empty conjunction = %+v, want zero value", got)
	}
}

func TestSortDiagnoses(t *testing.T) {
	ds := []Diagnosis{
		NewDiagnosis("Influenza", TruthValue{0.6, 0.5}),
		NewDiagnosis("Angina", TruthValue{0.9, 0.9}),
		NewDiagnosis("CommonCold", TruthValue{0.6, 0.5}),
	}
	SortDiagnoses(ds)

	want := []Symbol{"Angina", "CommonCold", "Influenza"}
	for i, d := range ds {
		if d.Disease != want[i] {
			t.Errorf("position %d = %s, want %s", i, d.Disease, want[i])
		}
	}
}

func TestNewDiagnosisClampsScore(t *testing.T) {
	d := NewDiagnosis("Angina", TruthValue{Strength: 1.5, Confidence: 0.8})
	if d.Strength != 1 {
		t.Errorf("Strength = %v, want 1", d.Strength)
	}
	if d.Score != 0.8 {
		t.Errorf("Score = %v, want 0.8", d.Score)
	}
}
