package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vasiltop/compiler/internal/mir"
	"github.com/vasiltop/compiler/internal/types"
)

type hostFunc func(in *Interpreter, args []uint64, argTypes []types.Type) (uint64, error)

var hostFuncs = map[string]hostFunc{
	"putchar": hostPutchar,
	"puts":    hostPuts,
	"printf":  hostPrintf,
	"exit":    hostExit,
}

func (in *Interpreter) callHost(fn *mir.Function, args []uint64, argTypes []types.Type) (uint64, error) {
	host, ok := hostFuncs[fn.Name]
	if !ok {
		return 0, fmt.Errorf("external function %s is not available in the interpreter", fn.Name)
	}
	if len(args) < len(fn.Params) {
		return 0, fmt.Errorf("%s: expected %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	return host(in, args, argTypes)
}

func hostPutchar(in *Interpreter, args []uint64, _ []types.Type) (uint64, error) {
	if _, err := in.output().Write([]byte{byte(args[0])}); err != nil {
		return 0, err
	}
	return args[0], nil
}

func hostPuts(in *Interpreter, args []uint64, _ []types.Type) (uint64, error) {
	s, err := in.mem.cstring(args[0])
	if err != nil {
		return 0, err
	}
	if _, err := fmt.Fprintln(in.output(), s); err != nil {
		return 0, err
	}
	return 0, nil
}

func hostExit(_ *Interpreter, args []uint64, _ []types.Type) (uint64, error) {
	return 0, &exitError{code: int(int32(args[0]))}
}

func hostPrintf(in *Interpreter, args []uint64, _ []types.Type) (uint64, error) {
	format, err := in.mem.cstring(args[0])
	if err != nil {
		return 0, err
	}
	out, err := in.sprintf(format, args[1:])
	if err != nil {
		return 0, err
	}
	n, err := in.output().Write([]byte(out))
	return uint64(n), err
}

// sprintf understands %d %i %u %x %c %s %% with an optional l or ll length.
func (in *Interpreter) sprintf(format string, args []uint64) (string, error) {
	var b strings.Builder
	next := 0
	arg := func() (uint64, error) {
		if next >= len(args) {
			return 0, fmt.Errorf("printf: missing argument for %q", format)
		}
		next++
		return args[next-1], nil
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 == len(format) {
			b.WriteByte(c)
			continue
		}
		i++
		long := false
		for i < len(format) && format[i] == 'l' {
			long = true
			i++
		}
		if i == len(format) {
			break
		}
		verb := format[i]
		if verb == '%' {
			b.WriteByte('%')
			continue
		}
		v, err := arg()
		if err != nil {
			return "", err
		}
		switch verb {
		case 'd', 'i':
			if long {
				b.WriteString(strconv.FormatInt(int64(v), 10))
			} else {
				b.WriteString(strconv.FormatInt(int64(int32(v)), 10))
			}
		case 'u':
			if long {
				b.WriteString(strconv.FormatUint(v, 10))
			} else {
				b.WriteString(strconv.FormatUint(uint64(uint32(v)), 10))
			}
		case 'x':
			if long {
				b.WriteString(strconv.FormatUint(v, 16))
			} else {
				b.WriteString(strconv.FormatUint(uint64(uint32(v)), 16))
			}
		case 'c':
			b.WriteByte(byte(v))
		case 's':
			s, err := in.mem.cstring(v)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		default:
			return "", fmt.Errorf("printf: unsupported verb %%%c", verb)
		}
	}
	return b.String(), nil
}
