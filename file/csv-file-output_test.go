package file

import (
	"compress/gzip"
	"encoding/csv"
	"os"
	"reflect"
	"regexp"
	"testing"

	"github.com/relloyd/tablesync/logger"
)

var header = []string{"col1", "col2"}

var data = [][]string{
	{"Line1", "Hello Readers of"},
	{"Line2", "golangcode.com"},
	{"Line3", "reeslloyd.com"},
	{"Line4", "reeslloyd4.com"}}

func writeAll(t *testing.T, f *CSVFileOutput) []string {
	fileNames := make([]string, 0)
	for _, value := range data {
		fileName, err := f.WriteToCSV(value)
		if err != nil {
			t.Fatal(err)
		}
		if fileName != "" {
			fileNames = append(fileNames, fileName)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return fileNames
}

func TestNewCsvFileGenerator(t *testing.T) {
	log := logger.NewLogger("csv test", "error", true)

	// Test 1 - rotate after 3 rows.
	csv1, err := NewCSVFileOutput(log, t.TempDir(), "test", "csv", 3, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	csv1.SetHeader(header)
	fileNames := writeAll(t, csv1)
	if len(fileNames) != 2 || !reflect.DeepEqual(fileNames, csv1.ListOfOutputFiles) {
		t.Fatalf("expected 2 files; got %v", fileNames)
	}
	if csv1.TotalRowCount() != len(data) {
		t.Fatalf("expected %v rows; got %v", len(data), csv1.TotalRowCount())
	}
	// Read back the file1 contents
	f1, _ := os.Open(fileNames[0])
	defer f1.Close()
	r1, _ := csv.NewReader(f1).ReadAll()
	expected := [][]string{header, data[0], data[1], data[2]}
	if !reflect.DeepEqual(r1, expected) {
		t.Fatalf("read bad file 1: expected %v; got %v", expected, r1)
	}
	// Read back the file2 contents
	f2, _ := os.Open(fileNames[1])
	defer f2.Close()
	r2, _ := csv.NewReader(f2).ReadAll()
	expected = [][]string{header, data[3]}
	if !reflect.DeepEqual(r2, expected) {
		t.Fatalf("read bad file 2: expected %v; got %v", expected, r2)
	}
	// Close twice is fine.
	if err = csv1.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewCsvFileGeneratorGzip(t *testing.T) {
	log := logger.NewLogger("csv test", "error", true)
	csv2, err := NewCSVFileOutput(log, "", "test", "csv", 4, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	fileNames := writeAll(t, csv2)
	if len(fileNames) != 1 {
		t.Fatalf("expected 1 file; got %v", fileNames)
	}
	if ok, _ := regexp.MatchString(`.*\.csv\.gz$`, fileNames[0]); !ok {
		t.Fatalf("csv file is missing .gz extension: %v", fileNames[0])
	}
	f3, _ := os.Open(fileNames[0])
	defer f3.Close()
	gz, err := gzip.NewReader(f3)
	if err != nil {
		t.Fatal(err)
	}
	r3, _ := csv.NewReader(gz).ReadAll()
	if !reflect.DeepEqual(r3, data) {
		t.Fatalf("read bad gzipped csv: expected %v; got %v", data, r3)
	}
	// Clean up the temp directory.
	if err = csv2.RemoveAll(); err != nil {
		t.Fatal(err)
	}
	if _, err = os.Stat(csv2.Directory()); !os.IsNotExist(err) {
		t.Fatalf("expected directory %v to be removed", csv2.Directory())
	}
}
