package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	ColumnCompanyName    = "Company Name"
	ColumnWebsite        = "Website"
	ColumnContactName    = "CEO Name"
	ColumnContactEmail   = "CEO Email"
	ColumnRevenue        = "Company Revenue"
	ColumnEmployeeCount  = "Company Employee Count"
	ColumnFoundingYear   = "Company Founding Year"
	ColumnTargetIndustry = "Target Industries"
	ColumnTargetSize     = "Target Company Size"
	ColumnTargetGeo      = "Target Geography"
	ColumnClientExamples = "Client Examples"
	ColumnServiceFocus   = "Service Focus"
	ColumnRanking        = "Ranking"
	ColumnReasoning      = "Reasoning"

	columnEmailFallback = "Email"
)

// CompanyColumns is the column order of the enriched companies table.
var CompanyColumns = []string{
	ColumnCompanyName,
	ColumnWebsite,
	ColumnContactName,
	ColumnContactEmail,
	ColumnRevenue,
	ColumnEmployeeCount,
	ColumnFoundingYear,
	ColumnTargetIndustry,
	ColumnTargetSize,
	ColumnTargetGeo,
	ColumnClientExamples,
	ColumnServiceFocus,
	ColumnRanking,
	ColumnReasoning,
}

type CompanyField struct {
	Name  string
	Value string
}

// CompanyRecord is one enriched company row. Fields keep the order the
// server sent them in.
type CompanyRecord struct {
	Fields []CompanyField
}

func NewCompanyRecord(fields ...CompanyField) CompanyRecord {
	return CompanyRecord{Fields: append([]CompanyField(nil), fields...)}
}

func (r CompanyRecord) Get(name string) string {
	for _, field := range r.Fields {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}

func (r CompanyRecord) Has(name string) bool {
	for _, field := range r.Fields {
		if field.Name == name {
			return true
		}
	}
	return false
}

func (r CompanyRecord) Name() string {
	return strings.TrimSpace(r.Get(ColumnCompanyName))
}

// Email returns the selection identity of the record: the contact email,
// trimmed and lower-cased. Empty means the record cannot be selected.
func (r CompanyRecord) Email() string {
	if email := NormalizeEmail(r.Get(ColumnContactEmail)); email != "" {
		return email
	}
	return NormalizeEmail(r.Get(columnEmailFallback))
}

// RawEmail is the contact email as displayed.
func (r CompanyRecord) RawEmail() string {
	if r.Has(ColumnContactEmail) {
		return strings.TrimSpace(r.Get(ColumnContactEmail))
	}
	return strings.TrimSpace(r.Get(columnEmailFallback))
}

func (r CompanyRecord) Ranking() (float64, bool) {
	raw := strings.TrimSpace(r.Get(ColumnRanking))
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func (r CompanyRecord) Clone() CompanyRecord {
	return CompanyRecord{Fields: append([]CompanyField(nil), r.Fields...)}
}

func (r *CompanyRecord) UnmarshalJSON(data []byte) error {
	fields := []CompanyField{}
	err := walkObject(data, func(key string, raw json.RawMessage) error {
		fields = append(fields, CompanyField{Name: key, Value: scalarText(raw)})
		return nil
	})
	if err != nil {
		return err
	}
	r.Fields = fields
	return nil
}

func (r CompanyRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func DecodeCompanies(data []byte) ([]CompanyRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []CompanyRecord{}, nil
	}
	var records []CompanyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []CompanyRecord{}
	}
	return records, nil
}

func CloneCompanies(in []CompanyRecord) []CompanyRecord {
	if in == nil {
		return nil
	}
	out := make([]CompanyRecord, len(in))
	for i, record := range in {
		out[i] = record.Clone()
	}
	return out
}
