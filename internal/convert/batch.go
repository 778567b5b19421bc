package convert

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"

	"docconv/internal/infra/workspace"
)

type bundleFile struct {
	name string
	path string
}

// bundle writes files into a ZIP archive at out, in order.
func bundle(out string, files []bundleFile) error {
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	for _, bf := range files {
		if err := addToZip(zw, bf); err != nil {
			zw.Close()
			f.Close()
			return fmt.Errorf("zip %s: %w", bf.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func addToZip(zw *zip.Writer, bf bundleFile) error {
	src, err := os.Open(bf.path)
	if err != nil {
		return err
	}
	defer src.Close()
	w, err := zw.CreateHeader(&zip.FileHeader{Name: bf.name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// eachInput runs convert for every input and returns a single file as is or
// several files bundled into <prefix>.zip.
func (s *Service) eachInput(ws *workspace.Workspace, req Request, prefix, suffix, single, contentType string,
	convert func(in Input, out string) error) (*output, error) {

	files := make([]bundleFile, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		name := workspace.Stem(in.Name) + suffix
		out := ws.Reserve(name)
		if err := convert(in, out); err != nil {
			return nil, fmt.Errorf("%s: %w", workspace.SafeName(in.Name), err)
		}
		files = append(files, bundleFile{name: name, path: out})
	}

	if len(files) == 1 {
		return &output{path: files[0].path, filename: single, contentType: contentType}, nil
	}
	files = uniqueEntries(files)
	name := prefix + ".zip"
	out := ws.Reserve(name)
	if err := bundle(out, files); err != nil {
		return nil, err
	}
	return &output{path: out, filename: name, contentType: contentZIP}, nil
}

// uniqueEntries renames duplicate archive entries the way the workspace
// renames duplicate uploads.
func uniqueEntries(files []bundleFile) []bundleFile {
	seen := make(map[string]int, len(files))
	for i, f := range files {
		n := seen[f.name]
		seen[f.name] = n + 1
		if n > 0 {
			stem := workspace.Stem(f.name)
			ext := f.name[len(stem):]
			files[i].name = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
	}
	return files
}

func (s *Service) batchCompress(ctx context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	return s.eachInput(ws, req, "compressed", "-compressed.pdf", "compressed.pdf", contentPDF,
		func(in Input, out string) error {
			return s.rasterizeToPDF(ctx, ws, in.Path, out, req.Quality)
		})
}

func (s *Service) batchCompressImages(_ context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	return s.eachInput(ws, req, "compressed", "-compressed.jpg", "compressed.jpg", contentJPEG,
		func(in Input, out string) error {
			return s.compressImageFile(in, out, req.Quality)
		})
}

func (s *Service) batchConvertToPDF(_ context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	return s.eachInput(ws, req, "converted", ".pdf", "converted.pdf", contentPDF,
		func(in Input, out string) error {
			return s.imageFileToPDF(ws, in, out)
		})
}
