package document

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

// Marshal renders the document as pretty JSON with two-space indentation,
// the format used for local persistence and exports.
func Marshal(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "encode document").Build()
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Unmarshal decodes a current-schema document without migration or validation.
func Unmarshal(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, ferrors.SchemaError("decode document").WithCause(err).Build()
	}
	d.normalize()
	return &d, nil
}

// Canonical returns the RFC 8785 canonical form of the document.
func Canonical(d *Document) ([]byte, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "encode document").Build()
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "canonicalize document").Build()
	}
	return out, nil
}

// Fingerprint hashes the canonical form with meta.lastSaved cleared, so two
// documents that differ only in save time share a fingerprint.
func Fingerprint(d *Document) (string, error) {
	c := *d
	c.Meta.LastSaved = nil
	data, err := Canonical(&c)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// EqualContent reports whether both documents carry the same content.
func EqualContent(a, b *Document) (bool, error) {
	fa, err := Fingerprint(a)
	if err != nil {
		return false, err
	}
	fb, err := Fingerprint(b)
	if err != nil {
		return false, err
	}
	return fa == fb, nil
}
