package service

import (
	"bytes"
	"encoding/json"
	"strings"

	"codecorpus/internal/core/dataset"
	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/services/train/domain"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// FormatCPT renders one record through the CPT template and appends eos
// braces inside the record are never treated as placeholders
func FormatCPT(r dataset.CodeRecord, eos string) string {
	return strings.NewReplacer("{file_path}", r.FilePath, "{content}", r.Content).Replace(domain.CPTTemplate) + eos
}

// Format maps every record to its training text in order
func Format(records []dataset.CodeRecord, eos string) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = FormatCPT(r, eos)
	}
	return out
}

func textSchema(column string) (string, error) {
	schema := map[string]any{
		"Tag": "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": []map[string]string{
			{"Tag": "name=" + column + ", type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"},
		},
	}
	b, err := json.Marshal(schema)
	return string(b), err
}

// encodeParquet writes a single text column parquet file into memory
func encodeParquet(column string, texts []string) ([]byte, error) {
	schema, err := textSchema(column)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "parquet schema")
	}

	buf := &bytes.Buffer{}
	pfw := writerfile.NewWriterFile(buf)
	pw, err := writer.NewJSONWriter(schema, pfw, 4)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "parquet writer for column %q", column)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, t := range texts {
		row, err := json.Marshal(map[string]string{column: t})
		if err != nil {
			_ = pw.WriteStop()
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "encode row %d", i)
		}
		if err := pw.Write(string(row)); err != nil {
			_ = pw.WriteStop()
			return nil, perr.Wrapf(err, perr.ErrorCodeIO, "write row %d", i)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "finish parquet")
	}
	_ = pfw.Close()
	return buf.Bytes(), nil
}
