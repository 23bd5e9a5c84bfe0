package tracker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/xuri/excelize/v2"

	"github.com/hirepulse/tadash/internal/candidate"
)

const sampleCSV = `TA Tracker - HM Sheet,,,,,,,,,,,
Candidate Name,Status,Status of R1,Status of R2,Status of R3,HM Details,Skill,Location of posting,Recruiter Name,Sourcing Date,TTF (60 days),TTH (30 days)
 Asha Rao ,Joined,Cleared,Cleared,Cleared,Priya,Go,Pune,Meera,2024-01-15,45,20
Ben Ortiz,Rejected,Cleared,Not Cleared,,Priya,Java,Bengaluru,Meera,1/20/2024,n/a,
Chen Li,Screening Reject,,,,Rahul,Go,Pune,Arjun,,,
,,,,,,,,,,,
Dana Kim,In Process,Cleared,,,Rahul,Python,Remote,Arjun,garbage,"1,200",12
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "tracker.csv", sampleCSV)

	ds, err := NewLoader(DefaultOptions()).Load(t.Context(), []string{p})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Records) != 4 {
		t.Fatalf("records = %d, want 4 (blank row dropped)", len(ds.Records))
	}
	if ds.Checksum == "" {
		t.Error("expected checksum")
	}

	asha := ds.Records[0]
	if asha.Name != "Asha Rao" {
		t.Errorf("Name = %q, want trimmed", asha.Name)
	}
	if asha.Category != candidate.CategoryJoined {
		t.Errorf("Category = %q", asha.Category)
	}
	if asha.SourcingDate == nil || asha.SourcingDate.Day() != 15 {
		t.Errorf("SourcingDate = %v", asha.SourcingDate)
	}
	if asha.TTF == nil || *asha.TTF != 45 {
		t.Errorf("TTF = %v", asha.TTF)
	}

	ben := ds.Records[1]
	if ben.Category != candidate.CategoryRejected || ben.RejectRound != candidate.RoundR2 {
		t.Errorf("ben = (%q, %q), want (Rejected, R2)", ben.Category, ben.RejectRound)
	}
	if ben.SourcingDate == nil || ben.SourcingDate.Month() != 1 || ben.SourcingDate.Day() != 20 {
		t.Errorf("month-first date = %v", ben.SourcingDate)
	}
	if ben.TTF != nil {
		t.Errorf("unparseable TTF should be nil, got %v", *ben.TTF)
	}

	if ds.Records[2].Category != candidate.CategoryScreeningReject {
		t.Errorf("chen category = %q", ds.Records[2].Category)
	}

	dana := ds.Records[3]
	if dana.SourcingDate != nil {
		t.Errorf("garbage date should be nil, got %v", dana.SourcingDate)
	}
	if dana.TTF == nil || *dana.TTF != 1200 {
		t.Errorf("TTF with thousands separator = %v", dana.TTF)
	}
	if dana.Category != candidate.CategoryPending {
		t.Errorf("dana category = %q", dana.Category)
	}
}

func TestLoadMissingStatusColumn(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "bad.csv", "meta\nCandidate Name,Skill\nA,Go\n")

	_, err := NewLoader(DefaultOptions()).Load(t.Context(), []string{p})
	if !errors.Is(err, ErrMissingStatusColumn) {
		t.Fatalf("err = %v, want ErrMissingStatusColumn", err)
	}
}

func TestLoadMissingOptionalColumns(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "min.csv", "meta\nstatus\nJoined\nrejected\n")

	ds, err := NewLoader(DefaultOptions()).Load(t.Context(), []string{p})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Records) != 2 {
		t.Fatalf("records = %d", len(ds.Records))
	}
	if ds.Records[0].Name != "" || ds.Records[0].SourcingDate != nil {
		t.Errorf("optional columns should be missing: %+v", ds.Records[0])
	}
	if ds.Records[1].Category != candidate.CategoryScreeningReject {
		t.Errorf("category = %q", ds.Records[1].Category)
	}
}

func TestLoadGlobKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "exports/b.csv", "meta\nStatus,Candidate Name\nJoined,B1\n")
	writeFile(t, dir, "exports/nested/a.csv", "meta\nStatus,Candidate Name\nSelected,A1\n")
	writeFile(t, dir, "exports/notes.txt", "ignored")

	ds, err := NewLoader(DefaultOptions()).Load(t.Context(), []string{filepath.Join(dir, "exports", "**", "*")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Sources) != 2 {
		t.Fatalf("sources = %v", ds.Sources)
	}
	if ds.Records[0].Name != "B1" || ds.Records[1].Name != "A1" {
		t.Errorf("order = %q, %q", ds.Records[0].Name, ds.Records[1].Name)
	}
}

func TestResolveSources(t *testing.T) {
	if _, err := ResolveSources(nil); !errors.Is(err, ErrNoSources) {
		t.Errorf("err = %v, want ErrNoSources", err)
	}
	got, err := ResolveSources([]string{"s3://bucket/a.csv", "local.csv", "local.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "s3://bucket/a.csv" {
		t.Errorf("got %v", got)
	}
	if _, err := ResolveSources([]string{filepath.Join(t.TempDir(), "*.csv")}); !errors.Is(err, ErrNoSources) {
		t.Errorf("empty glob err = %v", err)
	}
}

func TestIsGlob(t *testing.T) {
	for src, want := range map[string]bool{
		"exports/**/*.csv":  true,
		"tracker-?.xlsx":    true,
		"TA Tracker.csv":    false,
		"s3://bucket/*.csv": false,
	} {
		if got := IsGlob(src); got != want {
			t.Errorf("IsGlob(%q) = %v, want %v", src, got, want)
		}
	}
}

func TestChecksumChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "t.csv", "meta\nStatus\nJoined\n")
	l := NewLoader(DefaultOptions())

	first, err := l.Load(t.Context(), []string{p})
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "t.csv", "meta\nStatus\nRejected\n")
	second, err := l.Load(t.Context(), []string{p})
	if err != nil {
		t.Fatal(err)
	}
	if first.Checksum == second.Checksum {
		t.Error("checksum should change with content")
	}
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"TA Tracker - HM Sheet"},
		{"Candidate Name", "Status", "Status of R1", "Skill"},
		{"Asha", "Selected", "Cleared", "Go"},
		{"Ben", "Rejected in R1", "Not Cleared", "Java"},
	}
	for i, row := range rows {
		cellName, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cellName, &row); err != nil {
			t.Fatal(err)
		}
	}
	p := filepath.Join(t.TempDir(), "tracker.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatal(err)
	}

	ds, err := NewLoader(DefaultOptions()).Load(t.Context(), []string{p})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Records) != 2 {
		t.Fatalf("records = %d", len(ds.Records))
	}
	if ds.Records[0].Category != candidate.CategorySelected {
		t.Errorf("category = %q", ds.Records[0].Category)
	}
	if ds.Records[1].RejectRound != candidate.RoundR1 {
		t.Errorf("round = %q", ds.Records[1].RejectRound)
	}
}

type fakeS3 struct {
	objects map[string]string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func TestLoadS3(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"ta/2024/tracker.csv": "meta\nStatus,Candidate Name\nJoined,Remote One\n",
	}}
	l := NewLoader(DefaultOptions()).WithS3(client)

	ds, err := l.Load(t.Context(), []string{"s3://ta/2024/tracker.csv"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Records) != 1 || ds.Records[0].Source != "s3://ta/2024/tracker.csv" {
		t.Errorf("records = %+v", ds.Records)
	}

	if _, err := l.Load(t.Context(), []string{"s3://ta/missing.csv"}); err == nil {
		t.Error("expected error for missing object")
	}
	if _, err := NewLoader(DefaultOptions()).Load(t.Context(), []string{"s3://ta/2024/tracker.csv"}); err == nil {
		t.Error("expected error without s3 client")
	}
}

func TestCustomColumnsAndSkipRows(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipRows = 0
	opts.Columns.Status = "Current Stage"
	opts.Columns.Name = "Name"

	recs, err := NewLoader(opts).Parse([]byte("Name,Current Stage\nZed,Shortlisted\n"), "inline.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "Zed" || recs[0].Category != candidate.CategorySelected {
		t.Errorf("records = %+v", recs)
	}
}
