package submit

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/cheggaaa/pb/v3"
)

// Upload is a fully built multipart payload ready to POST.
type Upload struct {
	Body        *bytes.Buffer
	ContentType string
	FileCount   int

	bar *pb.ProgressBar
}

// Build validates the selection and assembles the multipart form the
// submit-work endpoint expects: job_id, work_description,
// additional_notes, one work_files_N field per file in selection order,
// and a trailing file_count.
func Build(jobID int, workDescription, additionalNotes string, sel *Selection) (*Upload, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("job_id", strconv.Itoa(jobID)); err != nil {
		return nil, fmt.Errorf("failed to write form field: %v", err)
	}
	if err := w.WriteField("work_description", workDescription); err != nil {
		return nil, fmt.Errorf("failed to write form field: %v", err)
	}
	if err := w.WriteField("additional_notes", additionalNotes); err != nil {
		return nil, fmt.Errorf("failed to write form field: %v", err)
	}

	for i, f := range sel.Files() {
		part, err := w.CreateFormFile(fmt.Sprintf("work_files_%d", i), f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to add file %q: %v", f.Name, err)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %q: %v", f.Name, err)
		}
		_, err = io.Copy(part, rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %v", f.Name, err)
		}
	}

	if err := w.WriteField("file_count", strconv.Itoa(sel.Len())); err != nil {
		return nil, fmt.Errorf("failed to write form field: %v", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %v", err)
	}

	return &Upload{
		Body:        &buf,
		ContentType: w.FormDataContentType(),
		FileCount:   sel.Len(),
	}, nil
}

// Reader returns the payload body, optionally wrapped in a progress bar
// sized to the full multipart payload.
func (u *Upload) Reader(showProgress bool) io.Reader {
	if !showProgress {
		return u.Body
	}
	u.bar = pb.New64(int64(u.Body.Len())).Set(pb.Bytes, true)
	u.bar.Start()
	return u.bar.NewProxyReader(u.Body)
}

// Finish stops the progress bar if one was started.
func (u *Upload) Finish() {
	if u.bar != nil {
		u.bar.Finish()
	}
}
