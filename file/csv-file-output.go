package file

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"regexp"

	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/logger"
)

// CSVFileOutput is a Writer that outputs to a OS file that rotates.
type CSVFileOutput struct {
	csvWriter         *csv.Writer
	log               logger.Logger
	directory         string // set to empty string if you want to use OS temp space with system generated directory
	prefix            string
	extension         string
	headerRecord      []string
	currentSuffixID   int
	currentName       string
	file              *os.File
	gzWriter          *gzip.Writer
	fWriter           *bufio.Writer
	useGzip           bool
	maxFileRows       int
	currentRowCount   int
	totalRowCount     int
	maxFileBytes      int
	currentBytesCount int
	needNewCSVFile    bool
	needFileCleanup   bool
	needCSVCleanup    bool
	ListOfOutputFiles []string
}

var reGzipExtension = regexp.MustCompile(`^(.*?)(\.*)(?i)(gzip|gz){0,}$`) // remove multiple leading '.' and trailing (case insensitive) "gz|gzip"

// NewCSVFileOutput creates a new CSV file struct. Supply a valid directory or empty string to use a new os.MkdirTemp() directory.
// Set maxFileRows to the number of rows you want in the CSV file (excluding the header) or 0 to only generate file.
// Set maxFileBytes to the approx number of bytes you want in the CSV file - only checked per row written.
// Setting maxFileBytes > 0 will cause each row to be flushed to the CSV file so this causes slower performance.
// Setting useGzip will use gzip compression and make the extension end with '.gz' (overriding any supplied alternatives like '.gzip').
func NewCSVFileOutput(log logger.Logger, outputDirectory string, fileNamePrefix string, fileNameExtension string, maxFileRows int, maxFileBytes int, useGzip bool) (*CSVFileOutput, error) {
	f := &CSVFileOutput{}
	f.log = log
	// Create output directory using temp space if needed.
	if outputDirectory == "" {
		var err error
		f.directory, err = os.MkdirTemp("", "csv-output-")
		if err != nil {
			return nil, errors.Wrap(err, "error creating temp directory for CSV files")
		}
	} else {
		f.directory = outputDirectory
	}
	// Save variables from input.
	f.prefix = fileNamePrefix
	f.extension = fileNameExtension
	f.maxFileRows = maxFileRows
	f.maxFileBytes = maxFileBytes
	f.useGzip = useGzip
	if useGzip { // if we should use gzip...
		f.extension = reGzipExtension.ReplaceAllString(f.extension, "$1.gz") // ensure file extension ends ".gz"
	}
	f.needNewCSVFile = true
	log.Debug("CSVFileOutput file prefix=", f.prefix, "; current suffix=", f.currentSuffixID, "; extension=", f.extension, "; maxFileRows=", f.maxFileRows, "; maxFileBytes=", f.maxFileBytes, "; useGzip=", f.useGzip)
	return f, nil
}

// Directory returns the directory that holds the CSV files.
func (f *CSVFileOutput) Directory() string {
	return f.directory
}

// TotalRowCount returns the number of records written across all files excluding headers.
func (f *CSVFileOutput) TotalRowCount() int {
	return f.totalRowCount
}

// Write uses os.File.Write to write to the file so this struct still implements the core io.Writer interface.
// Maintains a counter of the number of bytes written to the CSV file.
// Signals that we need to rotate the CSV file if f.maxFileBytes > 0.
func (f *CSVFileOutput) Write(p []byte) (n int, err error) {
	if f.useGzip { // if we should write to a gzip file...
		n, err = f.fWriter.Write(p)
	} else { // else write directly...
		n, err = f.file.Write(p)
	}
	f.currentBytesCount += n
	if rotateCheck(f.maxFileBytes, f.currentBytesCount) {
		f.needNewCSVFile = true
	}
	return n, err
}

// SetHeader will store the supplied record for output in each created CSV file.
func (f *CSVFileOutput) SetHeader(record []string) {
	f.headerRecord = record
}

// WriteToCSV writes record to the CSV file.
// Return fileName if a new file is created else empty string "".
func (f *CSVFileOutput) WriteToCSV(record []string) (fileName string, err error) {
	if f.needNewCSVFile {
		if err = f.closeCSVFileAndReset(); err != nil {
			return
		}
		if err = f.createNewCSVWriter(); err != nil {
			return
		}
		fileName = f.file.Name()
		// Write new header row if required.
		if f.headerRecord != nil {
			if err = f.csvWriter.Write(f.headerRecord); err != nil {
				return "", errors.Wrap(err, "unable to write header to CSV file")
			}
		}
	}
	if err = f.csvWriter.Write(record); err != nil {
		return "", errors.Wrap(err, "unable to write to CSV file")
	}
	if f.maxFileBytes > 0 { // if we are checking file size limits...
		// Flush each line so we can accurately check bytes written.
		// This causes f.Write() to be called, which maintains the count.
		// Expensive!
		f.csvWriter.Flush()
		if err = f.csvWriter.Error(); err != nil {
			return "", errors.Wrap(err, "unable to flush CSV file")
		}
	}
	// Count rows and signal that we need a new file if we are required to rotate the output file.
	f.currentRowCount++
	f.totalRowCount++
	if rotateCheck(f.maxFileRows, f.currentRowCount) { // if we need to rotate the output file after N number of rows...
		f.needNewCSVFile = true
	}
	return
}

func rotateCheck(maxCount int, currentCount int) bool {
	return maxCount > 0 && currentCount >= maxCount
}

// Close flushes the CSV Writer and closes the OS file.
// It is safe to call more than once.
func (f *CSVFileOutput) Close() error {
	return f.closeCSVFileAndReset()
}

// RemoveAll closes any open file and deletes the output directory.
func (f *CSVFileOutput) RemoveAll() error {
	if err := f.Close(); err != nil {
		return err
	}
	return os.RemoveAll(f.directory)
}

func (f *CSVFileOutput) fileFlush() error {
	f.csvWriter.Flush()
	if err := f.csvWriter.Error(); err != nil {
		return errors.Wrap(err, "unable to flush CSV writer")
	}
	if f.useGzip { // if we should flush the bufio writer...
		if err := f.fWriter.Flush(); err != nil {
			return err
		}
		if err := f.gzWriter.Flush(); err != nil { // if the gzip file couldn't be flushed...
			return err
		}
	}
	return nil
}

func (f *CSVFileOutput) fileCleanup() error {
	if f.useGzip { // if we should close the gzip first...
		if err := f.gzWriter.Close(); err != nil { // if the gzip didn't close OK...
			return err
		}
	}
	if err := f.file.Close(); err != nil { // if the file didn't close OK...
		return errors.Wrapf(err, "unable to close OS file %v", f.currentName)
	}
	return nil
}

// closeCSVFileAndReset will flush the CSV writer and close the OS file.
// It will flag that a new file is required at next write time.
func (f *CSVFileOutput) closeCSVFileAndReset() error {
	if f.needCSVCleanup {
		f.needCSVCleanup = false
		if err := f.fileFlush(); err != nil {
			return err
		}
	}
	if f.needFileCleanup {
		f.needFileCleanup = false
		if err := f.fileCleanup(); err != nil {
			return err
		}
	}
	// Request new CSV file be create the next time write is called.
	f.needNewCSVFile = true
	// Reset counters.
	f.currentRowCount = 0
	f.currentBytesCount = 0
	return nil
}

func (f *CSVFileOutput) createNewCSVWriter() error {
	// Get new file name.
	f.getNextFileName()
	f.log.Debug("Creating new CSV file '", f.currentName, "'")
	// Create new OS file.
	var err error
	f.file, err = os.Create(f.currentName)
	if err != nil {
		return errors.Wrapf(err, "unable to create OS file with name %v", f.currentName)
	}
	if f.useGzip { // if should use gzip...
		f.gzWriter = gzip.NewWriter(f.file)
		f.fWriter = bufio.NewWriter(f.gzWriter) // now we must Write() to this instead of the os file.
	}
	f.needFileCleanup = true
	// Create new CSV writer.
	f.csvWriter = csv.NewWriter(f)
	f.needCSVCleanup = true
	f.needNewCSVFile = false
	return nil
}

// getNextFileName generates a new file name in currentName in this struct.
// It also stores the history of these files in []listOfOutputFiles
func (f *CSVFileOutput) getNextFileName() {
	f.currentSuffixID++
	f.currentName = path.Join(f.directory, fmt.Sprintf("%v_%06d.%v", f.prefix, f.currentSuffixID, f.extension))
	f.ListOfOutputFiles = append(f.ListOfOutputFiles, f.currentName)
}
