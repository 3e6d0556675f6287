package classfile

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/google/uuid"
)

func init() {
	// Register pool constant types for gob serialization
	gob.Register(MethodRef{})
	gob.Register(int64(0))
	gob.Register(float64(0))
}

// bundleVersion constants
const (
	bundleVersionV1 byte = 0x01
)

// bundleMagic is the leading magic for serialized method-table bundles.
var bundleMagic = [4]byte{'L', 'M', 'C', 'T'}

// Bundle is a set of generated classes plus build provenance. The class
// list is ordered; serializing the same classes twice yields identical
// payloads except for the build ID, which identifies the producing run.
type Bundle struct {
	// BuildID identifies the generation run that produced the bundle
	BuildID string

	// SourceFile is the compilation unit the classes came from
	SourceFile string

	// Classes holds the generated method tables in generation order
	Classes []*Class
}

// NewBundle creates a bundle with a fresh build ID.
func NewBundle(sourceFile string, classes []*Class) *Bundle {
	return &Bundle{
		BuildID:    uuid.NewString(),
		SourceFile: sourceFile,
		Classes:    classes,
	}
}

// Serialize converts the bundle to its binary form.
// Format:
// - Magic number (4 bytes): "LMCT"
// - Version (1 byte): 0x01
// - Gob-encoded Bundle data
func (b *Bundle) Serialize() ([]byte, error) {
	buf := new(bytes.Buffer)

	buf.Write(bundleMagic[:])
	buf.WriteByte(bundleVersionV1)

	enc := gob.NewEncoder(buf)
	if err := enc.Encode(b); err != nil {
		return nil, fmt.Errorf("bundle gob encoding failed: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeBundle reads binary bundle data produced by Serialize.
func DeserializeBundle(data []byte) (*Bundle, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("bundle data too short")
	}

	if !bytes.Equal(data[:4], bundleMagic[:]) {
		return nil, fmt.Errorf("invalid magic number, expected LMCT")
	}

	version := data[4]
	if version != bundleVersionV1 {
		return nil, fmt.Errorf("unsupported bundle version: %d", version)
	}

	dec := gob.NewDecoder(bytes.NewReader(data[5:]))
	var bundle Bundle
	if err := dec.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("bundle gob decoding failed: %w", err)
	}
	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("bundle validation failed: %w", err)
	}
	return &bundle, nil
}

// Validate checks the structural integrity of a deserialized bundle.
func (b *Bundle) Validate() error {
	for _, class := range b.Classes {
		if class.Name == "" {
			return fmt.Errorf("class with empty name")
		}
		for _, m := range class.Methods {
			if m.IsAbstract() {
				if m.Code != nil {
					return fmt.Errorf("abstract entry %s in class %s carries code", m.Sig.Key(), class.Name)
				}
				continue
			}
			if m.Code == nil || len(m.Code.Code) == 0 {
				return fmt.Errorf("concrete entry %s in class %s has empty code", m.Sig.Key(), class.Name)
			}
		}
	}
	return nil
}

// Encode renders one class deterministically. Two generation runs over an
// unchanged declaration set produce byte-identical encodings.
func (c *Class) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := gob.NewEncoder(buf)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("class gob encoding failed: %w", err)
	}
	return buf.Bytes(), nil
}
