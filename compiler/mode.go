package compiler

type Mode int

const (
	NoMode Mode = iota
	WriteMode
	LoadMode
)

func (m Mode) String() string {
	switch m {
	case WriteMode:
		return "write"
	case LoadMode:
		return "load"
	}
	return "none"
}
