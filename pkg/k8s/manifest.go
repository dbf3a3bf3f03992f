// Copyright (c) 2025, 2026, Oracle and/or its affiliates.
// Licensed under the Universal Permissive License v 1.0 as shown at https://oss.oracle.com/licenses/upl.

// Package k8s wraps the slice of the Kubernetes client machinery that
// klab needs: decoding manifests, creating and deleting the resources
// they describe, and waiting for a provisioned cluster to become
// ready.
package k8s

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"
)

// DecodeManifests parses a stream of YAML documents into unstructured
// objects.  Empty and comment-only documents are dropped.
func DecodeManifests(r io.Reader) ([]unstructured.Unstructured, error) {
	reader := bufio.NewReader(r)
	buffer := bytes.Buffer{}
	objs := []unstructured.Unstructured{}

	flushBuffer := func() error {
		if buffer.Len() < 1 {
			return nil
		}
		obj := unstructured.Unstructured{Object: map[string]interface{}{}}
		yamlBytes := buffer.Bytes()
		if err := yaml.Unmarshal(yamlBytes, &obj); err != nil {
			return err
		}
		if len(obj.Object) > 0 {
			objs = append(objs, obj)
		}
		buffer.Reset()
		return nil
	}

	eofReached := false
	for {
		// Read the stream line by line
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// EOF has been reached, but there may be some line data to process
				eofReached = true
			} else {
				return objs, err
			}
		}
		// A document separator is only recognized at the start of a
		// line so that strings containing "---" survive.
		if strings.HasPrefix(string(line), "---") {
			if err = flushBuffer(); err != nil {
				return objs, err
			}
		} else {
			buffer.Write(line)
		}
		if eofReached {
			break
		}
	}

	err := flushBuffer()
	return objs, err
}

// ReadManifestFile decodes every YAML document in the named file.
func ReadManifestFile(path string) ([]unstructured.Unstructured, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeManifests(f)
}
