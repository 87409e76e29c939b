package types

import (
	"encoding/json"
	"testing"
)

func TestDecodeCompaniesKeepsFieldOrder(t *testing.T) {
	payload := []byte(`[{"Company Name":"Acme","Website":"acme.io","CEO Email":" Jane@Acme.io ","Ranking":8.0,"Reasoning":null}]`)
	records, err := DecodeCompanies(payload)
	if err != nil {
		t.Fatalf("DecodeCompanies: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	got := records[0]
	wantOrder := []string{ColumnCompanyName, ColumnWebsite, ColumnContactEmail, ColumnRanking, ColumnReasoning}
	if len(got.Fields) != len(wantOrder) {
		t.Fatalf("unexpected fields: %#v", got.Fields)
	}
	for i, name := range wantOrder {
		if got.Fields[i].Name != name {
			t.Fatalf("field %d: expected %q, got %q", i, name, got.Fields[i].Name)
		}
	}
	if got.Get(ColumnRanking) != "8" {
		t.Fatalf("expected integral ranking text, got %q", got.Get(ColumnRanking))
	}
	if got.Get(ColumnReasoning) != "" {
		t.Fatalf("expected null to decode as empty, got %q", got.Get(ColumnReasoning))
	}
	if got.Email() != "jane@acme.io" {
		t.Fatalf("expected normalized email, got %q", got.Email())
	}
}

func TestDecodeCompaniesNullIsEmpty(t *testing.T) {
	records, err := DecodeCompanies([]byte("null"))
	if err != nil {
		t.Fatalf("DecodeCompanies: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", records)
	}
}

func TestCompanyRankingParsing(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOK bool
	}{
		{"number", `{"Ranking":7}`, 7, true},
		{"numeric string", `{"Ranking":" 4.5 "}`, 4.5, true},
		{"empty string", `{"Ranking":""}`, 0, false},
		{"missing", `{"Company Name":"x"}`, 0, false},
		{"garbage", `{"Ranking":"high"}`, 0, false},
		{"nan", `{"Ranking":"NaN"}`, 0, false},
		{"infinity", `{"Ranking":"-Inf"}`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var record CompanyRecord
			if err := json.Unmarshal([]byte(tt.raw), &record); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, ok := record.Ranking()
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("Ranking() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCompanyEmailFallsBackToEmailColumn(t *testing.T) {
	record := NewCompanyRecord(CompanyField{Name: "Email", Value: "Ops@Beta.com"})
	if record.Email() != "ops@beta.com" {
		t.Fatalf("expected fallback email, got %q", record.Email())
	}
}

func TestCompanyMarshalJSONPreservesOrder(t *testing.T) {
	record := NewCompanyRecord(
		CompanyField{Name: "Ranking", Value: "3"},
		CompanyField{Name: "Company Name", Value: "Zed"},
	)
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"Ranking":"3","Company Name":"Zed"}` {
		t.Fatalf("unexpected json: %s", data)
	}
}
