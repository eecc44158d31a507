package core

import (
	"fmt"
	"io"
	"os"
)

type Encoder[T any] interface {
	Encode(T) error
}

type Decoder[T any] interface {
	Decode(T) error
}

var (
	_ Encoder[Program]  = ProgramEncoder{}
	_ Decoder[*Program] = (*ProgramDecoder)(nil)
)

// ProgramEncoder writes programs in the comma separated text form.
type ProgramEncoder struct {
	w io.Writer
}

func NewProgramEncoder(w io.Writer) *ProgramEncoder {
	return &ProgramEncoder{
		w: w,
	}
}

func (e ProgramEncoder) Encode(p Program) error {
	_, err := io.WriteString(e.w, p.String()+"\n")
	return err
}

// ProgramDecoder reads one program from the whole of its reader.
type ProgramDecoder struct {
	r io.Reader
}

func NewProgramDecoder(r io.Reader) *ProgramDecoder {
	return &ProgramDecoder{
		r: r,
	}
}

func (d *ProgramDecoder) Decode(p *Program) error {
	b, err := io.ReadAll(d.r)
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}
	parsed, err := ParseProgram(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func LoadProgramFile(path string) (Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var p Program
	if err := NewProgramDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
