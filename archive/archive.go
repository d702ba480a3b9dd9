/* Copyright (c) 2023 Jason Ish
 * All rights reserved.
 *
 * Redistribution and use in source and binary forms, with or without
 * modification, are permitted provided that the following conditions
 * are met:
 *
 * 1. Redistributions of source code must retain the above copyright
 *    notice, this list of conditions and the following disclaimer.
 * 2. Redistributions in binary form must reproduce the above copyright
 *    notice, this list of conditions and the following disclaimer in the
 *    documentation and/or other materials provided with the distribution.
 *
 * THIS SOFTWARE IS PROVIDED ``AS IS'' AND ANY EXPRESS OR IMPLIED
 * WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
 * DISCLAIMED. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY DIRECT,
 * INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES
 * (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
 * SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION)
 * HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT,
 * STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING
 * IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 * POSSIBILITY OF SUCH DAMAGE.
 */

// Package archive extracts rule files from the containers vendors
// publish, currently gzip compressed tarballs and zip files.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/jasonish/rulebox/core"
)

// File is one regular file extracted from an archive.
type File struct {
	Name    string
	Content []byte
}

// Reader extracts the regular files of an archive. One implementation
// per container format.
type Reader interface {
	Extract(fs afero.Fs, path string) ([]File, error)
}

// Open returns the Reader for an archive based on its filename. The
// container format is not sniffed from the content.
func Open(path string) (Reader, error) {
	switch {
	case strings.HasSuffix(path, ".tar.gz"):
		return &TarGzReader{}, nil
	case strings.HasSuffix(path, ".zip"):
		return &ZipReader{}, nil
	}
	return nil, &core.UnsupportedFormatError{Path: path}
}

// TarGzReader reads gzip compressed tar archives.
type TarGzReader struct{}

func (r *TarGzReader) Extract(fs afero.Fs, path string) ([]File, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, &core.IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, &core.CorruptArchiveError{Path: path, Err: err}
	}
	defer gzipReader.Close()

	files := []File{}
	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &core.CorruptArchiveError{Path: path, Err: err}
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, &core.CorruptArchiveError{Path: path, Err: err}
		}
		files = append(files, File{
			Name:    header.Name,
			Content: content,
		})
	}

	return files, nil
}

// ZipReader reads zip archives.
type ZipReader struct{}

func (r *ZipReader) Extract(fs afero.Fs, path string) ([]File, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, &core.IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	info, err := fs.Stat(path)
	if err != nil {
		return nil, &core.IOError{Op: "stat", Path: path, Err: err}
	}

	zipReader, err := zip.NewReader(file, info.Size())
	if err != nil {
		return nil, &core.CorruptArchiveError{Path: path, Err: err}
	}

	files := []File{}
	for _, entry := range zipReader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		reader, err := entry.Open()
		if err != nil {
			return nil, &core.CorruptArchiveError{Path: path, Err: err}
		}
		content, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			return nil, &core.CorruptArchiveError{Path: path, Err: err}
		}
		files = append(files, File{
			Name:    entry.Name,
			Content: content,
		})
	}

	return files, nil
}
