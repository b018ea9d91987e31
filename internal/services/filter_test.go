package services

import (
	"reflect"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func sampleFiles() []models.BankFileRecord {
	return []models.BankFileRecord{
		{ClientID: "C-100", ClientName: "Ayesha Khan", FileNumber: "HBL-001", BankName: "HBL", ProductType: "Credit Card", AllegationDate: datePtr(2024, time.January, 5)},
		{ClientID: "C-200", ClientName: "Bilal Ahmed", FileNumber: "UBL-002", BankName: "UBL", ProductType: "Auto Loan", AllegationDate: datePtr(2024, time.January, 31)},
		{ClientID: "C-300", ClientName: "Sara Malik", FileNumber: "HBL-003", BankName: "HBL", ProductType: "Auto Loan", AllegationDate: datePtr(2024, time.February, 1)},
		{ClientID: "C-400", ClientName: "Omar Farooq", FileNumber: "MCB-004", BankName: "MCB", ProductType: "Credit Card"},
	}
}

func fileNumbers(files []models.BankFileRecord) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.FileNumber
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	jan := dto.FilterCriteria{
		UseCustomDateRange: true,
		DateFrom:           datePtr(2024, time.January, 1),
		DateTo:             datePtr(2024, time.January, 31),
	}

	tests := []struct {
		name     string
		criteria dto.FilterCriteria
		want     []string
	}{
		{"zero criteria keeps all", dto.FilterCriteria{}, []string{"HBL-001", "UBL-002", "HBL-003", "MCB-004"}},
		{"all keeps all", dto.FilterCriteria{Bank: dto.FilterAll, FileType: dto.FilterAll}, []string{"HBL-001", "UBL-002", "HBL-003", "MCB-004"}},
		{"bank", dto.FilterCriteria{Bank: "HBL"}, []string{"HBL-001", "HBL-003"}},
		{"bank is exact", dto.FilterCriteria{Bank: "hbl"}, []string{}},
		{"file type", dto.FilterCriteria{FileType: "Auto Loan"}, []string{"UBL-002", "HBL-003"}},
		{"bank and type", dto.FilterCriteria{Bank: "HBL", FileType: "Auto Loan"}, []string{"HBL-003"}},
		{"search name", dto.FilterCriteria{SearchText: "  malik "}, []string{"HBL-003"}},
		{"search file number", dto.FilterCriteria{SearchText: "ubl-0"}, []string{"UBL-002"}},
		{"search client id", dto.FilterCriteria{SearchText: "c-400"}, []string{"MCB-004"}},
		{"date range drops undated", jan, []string{"HBL-001", "UBL-002"}},
		{"range needs flag", dto.FilterCriteria{DateFrom: jan.DateFrom, DateTo: jan.DateTo}, []string{"HBL-001", "UBL-002", "HBL-003", "MCB-004"}},
		{"range needs both bounds", dto.FilterCriteria{UseCustomDateRange: true, DateFrom: jan.DateFrom}, []string{"HBL-001", "UBL-002", "HBL-003", "MCB-004"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fileNumbers(ApplyFilters(sampleFiles(), tt.criteria))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyFiltersDateRangeBoundaries(t *testing.T) {
	collections := []models.CollectionRecord{
		{ID: "before", CollectedAt: timePtr(time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC))},
		{ID: "first", CollectedAt: timePtr(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))},
		{ID: "late", CollectedAt: timePtr(time.Date(2024, time.January, 31, 23, 0, 0, 0, time.UTC))},
		{ID: "after", CollectedAt: timePtr(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))},
		{ID: "undated"},
	}
	got := ApplyFilters(collections, dto.FilterCriteria{
		UseCustomDateRange: true,
		DateFrom:           &civil.Date{Year: 2024, Month: time.January, Day: 1},
		DateTo:             &civil.Date{Year: 2024, Month: time.January, Day: 31},
	})

	var ids []string
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	if !reflect.DeepEqual(ids, []string{"first", "late"}) {
		t.Fatalf("got %v", ids)
	}
}

func TestApplyFiltersCommute(t *testing.T) {
	criteria := []dto.FilterCriteria{
		{Bank: "HBL"},
		{FileType: "Auto Loan"},
		{SearchText: "a"},
		{UseCustomDateRange: true, DateFrom: datePtr(2024, time.January, 20), DateTo: datePtr(2024, time.February, 10)},
		{Bank: dto.FilterAll, FileType: "Credit Card"},
		{Bank: "UBL"},
		{SearchText: "khan"},
		{UseCustomDateRange: true, DateFrom: datePtr(2024, time.January, 1), DateTo: datePtr(2024, time.January, 31)},
	}

	files := sampleFiles()
	for i, c1 := range criteria {
		for j, c2 := range criteria {
			if i == j {
				continue
			}
			chained := ApplyFilters(ApplyFilters(files, c1), c2)
			swapped := ApplyFilters(ApplyFilters(files, c2), c1)
			merged := ApplyFilters(files, c1.Merge(c2))

			if !reflect.DeepEqual(fileNumbers(chained), fileNumbers(swapped)) {
				t.Fatalf("c%d then c%d = %v, reversed = %v", i, j, fileNumbers(chained), fileNumbers(swapped))
			}
			if !reflect.DeepEqual(fileNumbers(chained), fileNumbers(merged)) {
				t.Fatalf("c%d then c%d = %v, merged = %v", i, j, fileNumbers(chained), fileNumbers(merged))
			}
		}
	}
}

func TestFilterCriteriaMerge(t *testing.T) {
	tests := []struct {
		name   string
		c1, c2 dto.FilterCriteria
		want   []string
	}{
		{"different banks", dto.FilterCriteria{Bank: "HBL"}, dto.FilterCriteria{Bank: "UBL"}, []string{}},
		{"same bank", dto.FilterCriteria{Bank: "HBL"}, dto.FilterCriteria{Bank: "HBL"}, []string{"HBL-001", "HBL-003"}},
		{"all then bank", dto.FilterCriteria{Bank: dto.FilterAll}, dto.FilterCriteria{Bank: "UBL"}, []string{"UBL-002"}},
		{"different file types", dto.FilterCriteria{FileType: "Auto Loan"}, dto.FilterCriteria{FileType: "Credit Card"}, []string{}},
		{"conflict survives later merge", dto.FilterCriteria{Bank: "HBL"}.Merge(dto.FilterCriteria{Bank: "UBL"}), dto.FilterCriteria{}, []string{}},
		{"both search terms", dto.FilterCriteria{SearchText: "HBL"}, dto.FilterCriteria{SearchText: "malik"}, []string{"HBL-003"}},
		{"disjoint search terms", dto.FilterCriteria{SearchText: "khan"}, dto.FilterCriteria{SearchText: "malik"}, []string{}},
		{
			"ranges intersect",
			dto.FilterCriteria{UseCustomDateRange: true, DateFrom: datePtr(2024, time.January, 1), DateTo: datePtr(2024, time.January, 31)},
			dto.FilterCriteria{UseCustomDateRange: true, DateFrom: datePtr(2024, time.January, 20), DateTo: datePtr(2024, time.February, 10)},
			[]string{"UBL-002"},
		},
		{
			"disjoint ranges",
			dto.FilterCriteria{UseCustomDateRange: true, DateFrom: datePtr(2024, time.January, 1), DateTo: datePtr(2024, time.January, 10)},
			dto.FilterCriteria{UseCustomDateRange: true, DateFrom: datePtr(2024, time.February, 1), DateTo: datePtr(2024, time.February, 10)},
			[]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chained := fileNumbers(ApplyFilters(ApplyFilters(sampleFiles(), tt.c1), tt.c2))
			merged := fileNumbers(ApplyFilters(sampleFiles(), tt.c1.Merge(tt.c2)))
			if !reflect.DeepEqual(merged, tt.want) {
				t.Fatalf("merged = %v, want %v", merged, tt.want)
			}
			if !reflect.DeepEqual(chained, merged) {
				t.Fatalf("chained = %v, merged = %v", chained, merged)
			}
		})
	}
}

func TestFilterCriteriaMergeKeepsInputs(t *testing.T) {
	c1 := dto.FilterCriteria{SearchText: "a", ExtraSearch: []string{"b"}}
	c2 := dto.FilterCriteria{SearchText: "c", Period: dto.PeriodLastMonth}

	got := c1.Merge(c2)
	if !reflect.DeepEqual(got.SearchTerms(), []string{"a", "b", "c"}) {
		t.Fatalf("terms = %v", got.SearchTerms())
	}
	if got.Period != dto.PeriodLastMonth {
		t.Fatalf("period = %q", got.Period)
	}
	if len(c1.ExtraSearch) != 1 {
		t.Fatalf("receiver changed: %+v", c1)
	}
}

func TestApplyFiltersDoesNotMutateInput(t *testing.T) {
	files := sampleFiles()
	files[0].Outstanding = decimal.NewFromInt(10)
	_ = ApplyFilters(files, dto.FilterCriteria{Bank: "UBL"})
	if len(files) != 4 || files[0].FileNumber != "HBL-001" || !files[0].Outstanding.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("input changed: %+v", files)
	}
}
