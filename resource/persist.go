package resource

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"golang.org/x/crypto/blake2b"

	"github.com/embervale/actioncore/script/vm"
)

// scriptCacheKey derives the dedup/persistence key for a (context class,
// source text) pair: a blake2b digest so identical script text always maps
// to the same key regardless of which resource file it came from.
func scriptCacheKey(ctxID uint8, src string) string {
	h := blake2b.Sum256(append([]byte{ctxID}, src...))
	return fmt.Sprintf("%x", h)
}

// marshalProgram serializes a compiled Program to a snappy-compressed
// byte stream: ctx id, const word count + words, code word count + words.
func marshalProgram(p *vm.Program) []byte {
	var buf bytes.Buffer
	buf.WriteByte(p.CtxID)
	binary.Write(&buf, binary.LittleEndian, uint32(len(p.Const)))
	binary.Write(&buf, binary.LittleEndian, p.Const)
	binary.Write(&buf, binary.LittleEndian, uint32(len(p.Code)))
	binary.Write(&buf, binary.LittleEndian, p.Code)
	return snappy.Encode(nil, buf.Bytes())
}

// unmarshalProgram reverses marshalProgram.
func unmarshalProgram(data []byte) (*vm.Program, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("resource: decompressing program: %w", err)
	}
	r := bytes.NewReader(raw)

	ctxID, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("resource: reading ctx id: %w", err)
	}

	var constLen uint32
	if err := binary.Read(r, binary.LittleEndian, &constLen); err != nil {
		return nil, fmt.Errorf("resource: reading const length: %w", err)
	}
	constWords := make([]int64, constLen)
	if err := binary.Read(r, binary.LittleEndian, constWords); err != nil {
		return nil, fmt.Errorf("resource: reading const words: %w", err)
	}

	var codeLen uint32
	if err := binary.Read(r, binary.LittleEndian, &codeLen); err != nil {
		return nil, fmt.Errorf("resource: reading code length: %w", err)
	}
	code := make([]uint16, codeLen)
	if err := binary.Read(r, binary.LittleEndian, code); err != nil {
		return nil, fmt.Errorf("resource: reading code words: %w", err)
	}

	return &vm.Program{CtxID: ctxID, Const: constWords, Code: code}, nil
}

func programPath(dir, key string) string {
	return filepath.Join(dir, key+".bin")
}

func saveProgram(dir, key string, p *vm.Program) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(programPath(dir, key), marshalProgram(p), 0o644)
}

func loadProgram(dir, key string) (*vm.Program, error) {
	data, err := os.ReadFile(programPath(dir, key))
	if err != nil {
		return nil, err
	}
	return unmarshalProgram(data)
}
