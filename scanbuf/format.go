package scanbuf

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// String renders the latest scan as one value per line, or "null" when the
// buffer is empty.
func (this *ScanBuffer) String() string {
	var sb strings.Builder
	this.WriteTo(&sb)
	return sb.String()
}

// WriteTo writes the same text as String to w.
func (this *ScanBuffer) WriteTo(w io.Writer) (int64, error) {
	if this.count == 0 {
		return WriteScan(w, nil)
	}
	return WriteScan(w, this.slot(this.prev(this.tail())))
}

// WriteScan writes scan one value per line, or "null" for an empty scan. The
// count is the number of bytes w accepted.
func WriteScan(w io.Writer, scan []float64) (int64, error) {
	if len(scan) == 0 {
		n, err := io.WriteString(w, "null")
		return int64(n), err
	}

	var written int64
	var line []byte
	for _, v := range scan {
		line = strconv.AppendFloat(line[:0], v, 'g', -1, 64)
		line = append(line, '\n')
		n, err := w.Write(line)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// ParseScan reads whitespace separated values, the inverse of String for a
// non empty buffer.
func ParseScan(r io.Reader) ([]float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	scan := make([]float64, 0)
	for scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, err
		}
		scan = append(scan, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return scan, nil
}
