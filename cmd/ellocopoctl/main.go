// Command ellocopoctl is the host-side REPL: it reads lines of the form
// `[@|w|W]<path>[ <value>]`, builds a request, sends it over the
// configured transport, and prints the parsed answer. Write commands do
// not name a value type; the register's declared type is looked up in the
// loaded scheme and the literal parsed accordingly.
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/theckman/yacspin"

	"github.com/openbuttnakedgang/ellocopo2/config"
	"github.com/openbuttnakedgang/ellocopo2/schema"
	"github.com/openbuttnakedgang/ellocopo2/transport"
	"github.com/openbuttnakedgang/ellocopo2/transport/serialtransport"
	"github.com/openbuttnakedgang/ellocopo2/transport/usbtransport"
	"github.com/openbuttnakedgang/ellocopo2/wire"
	"github.com/openbuttnakedgang/ellocopo2/wire/streamparse"
)

func main() {
	cfgPath := "ellocopoctl.yml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("ellocopoctl: loading config: %v", err)
	}

	types, err := loadTypes(cfg.SchemePath)
	if err != nil {
		log.Fatalf("ellocopoctl: loading scheme: %v", err)
	}

	open, err := opener(cfg)
	if err != nil {
		log.Fatal(err)
	}

	dev, err := connect(open)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("ellocopoctl: %v", err))
		os.Exit(1)
	}
	defer dev.Close()
	fmt.Println(color.GreenString("device connected"))

	os.Exit(repl(os.Stdin, dev, types))
}

func opener(cfg config.Config) (transport.Opener, error) {
	switch cfg.Transport {
	case "usb":
		return usbtransport.Opener(cfg.USBVendorID, cfg.USBProductID), nil
	case "serial":
		return serialtransport.Opener(cfg.SerialPort, cfg.SerialBaud), nil
	default:
		return nil, fmt.Errorf("ellocopoctl: unknown transport %q", cfg.Transport)
	}
}

func connect(open transport.Opener) (transport.Device, error) {
	spinner, err := yacspin.New(yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[11],
		Suffix:          " connecting to device",
		SuffixAutoColon: true,
		StopCharacter:   "OK",
		StopColors:      []string{"fgGreen"},
	})
	if err == nil {
		spinner.Start()
	}
	dev, dialErr := transport.Dial(open)
	if err == nil {
		if dialErr != nil {
			spinner.StopFailMessage(dialErr.Error())
			spinner.StopFail()
		} else {
			spinner.Stop()
		}
	}
	return dev, dialErr
}

func loadTypes(schemePath string) (map[string]wire.TypeTag, error) {
	doc, err := os.ReadFile(schemePath)
	if err != nil {
		return nil, err
	}
	root, err := schema.Parse(doc)
	if err != nil {
		return nil, err
	}
	types := make(map[string]wire.TypeTag)
	schema.VisitRegisters(root, func(r *schema.Register) {
		types[r.Path] = r.Type
	})
	return types, nil
}

// repl reads commands from in until EOF, returning the process exit code:
// 0 on clean EOF, non-zero on transport failure.
func repl(in io.Reader, dev transport.Device, types map[string]wire.TypeTag) int {
	scanner := bufio.NewScanner(in)
	reqBuf := make([]byte, wire.MaxMsgSize)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		isWrite, path, literal, err := parseLine(line)
		if err != nil {
			fmt.Println(color.RedString(err.Error()))
			continue
		}

		code := wire.Read
		value := wire.Unit()
		if isWrite {
			code = wire.Write
			if tag, ok := types[path]; ok && tag != wire.TagUnit {
				value, err = parseValueLiteral(tag, literal)
				if err != nil {
					fmt.Println(color.RedString("ellocopoctl: %v", err))
					continue
				}
			}
		}

		n, err := wire.NewRequestBuilder(reqBuf).Code(code).Path(path).Payload(value).Build()
		if err != nil {
			fmt.Println(color.RedString("ellocopoctl: building request: %v", err))
			continue
		}

		if _, err := dev.Write(reqBuf[:n]); err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("ellocopoctl: write: %v", err))
			return 1
		}

		ans, err := readAnswer(dev)
		if err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("ellocopoctl: read: %v", err))
			return 1
		}
		printAnswer(ans)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("ellocopoctl: stdin: %v", err))
		return 1
	}
	return 0
}

// readAnswer feeds dev's bytes into a fresh Answers parser until it yields
// a complete message, growing its buffer the way the parser's contract
// requires (it never consumes the buffer it's handed).
func readAnswer(dev io.Reader) (streamparse.Msg, error) {
	p := streamparse.New(streamparse.Answers)
	buf := make([]byte, 0, wire.MaxMsgSize)
	chunk := make([]byte, wire.MaxMsgSize)
	for {
		msg, err := p.Parse(buf)
		if err == nil {
			return msg, nil
		}
		if err != streamparse.ErrNeedMoreData {
			return streamparse.Msg{}, err
		}
		n, rerr := dev.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if rerr != nil {
			return streamparse.Msg{}, rerr
		}
	}
}

func printAnswer(m streamparse.Msg) {
	code := m.AsAnswerCode()
	line := fmt.Sprintf("%s %s %s", m.Path, code, formatValue(m.Value))
	if code.IsError() {
		fmt.Println(color.RedString(line))
	} else {
		fmt.Println(color.GreenString(line))
	}
}

func formatValue(v wire.Value) string {
	switch v.Tag {
	case wire.TagUnit:
		return ""
	case wire.TagBool:
		return strconv.FormatBool(v.Bool)
	case wire.TagI8:
		return strconv.FormatInt(int64(v.I8), 10)
	case wire.TagI16:
		return strconv.FormatInt(int64(v.I16), 10)
	case wire.TagI32:
		return strconv.FormatInt(int64(v.I32), 10)
	case wire.TagU8:
		return strconv.FormatUint(uint64(v.U8), 10)
	case wire.TagU16:
		return strconv.FormatUint(uint64(v.U16), 10)
	case wire.TagU32:
		return strconv.FormatUint(uint64(v.U32), 10)
	case wire.TagStr:
		return v.Str
	case wire.TagBytes:
		return hex.EncodeToString(v.Bytes)
	default:
		return ""
	}
}

// parseLine splits a REPL line into its write/read flag, path and optional
// value literal per the grammar `[@|w|W]<path>[ <value>]`.
func parseLine(line string) (isWrite bool, path, literal string, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, "", "", fmt.Errorf("ellocopoctl: empty line")
	}
	if line[0] == '@' || line[0] == 'w' || line[0] == 'W' {
		isWrite = true
		line = line[1:]
	}
	fields := strings.SplitN(line, " ", 2)
	path = fields[0]
	if len(fields) == 2 {
		literal = strings.TrimSpace(fields[1])
	}
	if path == "" || path[0] != '/' {
		return false, "", "", fmt.Errorf("ellocopoctl: path must start with '/': %q", path)
	}
	return isWrite, path, literal, nil
}

// parseValueLiteral decodes a REPL value literal into a wire.Value of the
// given tag. Numeric literals accept the 0x/0b radix prefixes
// strconv.ParseInt/ParseUint's base-0 mode understands.
func parseValueLiteral(tag wire.TypeTag, lit string) (wire.Value, error) {
	switch tag {
	case wire.TagUnit:
		return wire.Unit(), nil
	case wire.TagBool:
		switch lit {
		case "true", "1":
			return wire.BoolValue(true), nil
		case "false", "0":
			return wire.BoolValue(false), nil
		default:
			return wire.Value{}, fmt.Errorf("bad bool literal %q", lit)
		}
	case wire.TagStr:
		return wire.StrValue(lit), nil
	case wire.TagBytes:
		b, err := hex.DecodeString(strings.TrimPrefix(lit, "0x"))
		if err != nil {
			return wire.Value{}, fmt.Errorf("bad [u8] literal %q: %w", lit, err)
		}
		return wire.BytesValue(b), nil
	case wire.TagI8:
		n, err := strconv.ParseInt(lit, 0, 8)
		if err != nil {
			return wire.Value{}, err
		}
		return wire.I8Value(int8(n)), nil
	case wire.TagI16:
		n, err := strconv.ParseInt(lit, 0, 16)
		if err != nil {
			return wire.Value{}, err
		}
		return wire.I16Value(int16(n)), nil
	case wire.TagI32:
		n, err := strconv.ParseInt(lit, 0, 32)
		if err != nil {
			return wire.Value{}, err
		}
		return wire.I32Value(int32(n)), nil
	case wire.TagU8:
		n, err := strconv.ParseUint(lit, 0, 8)
		if err != nil {
			return wire.Value{}, err
		}
		return wire.U8Value(uint8(n)), nil
	case wire.TagU16:
		n, err := strconv.ParseUint(lit, 0, 16)
		if err != nil {
			return wire.Value{}, err
		}
		return wire.U16Value(uint16(n)), nil
	case wire.TagU32:
		n, err := strconv.ParseUint(lit, 0, 32)
		if err != nil {
			return wire.Value{}, err
		}
		return wire.U32Value(uint32(n)), nil
	default:
		return wire.Value{}, fmt.Errorf("unsupported type tag %v", tag)
	}
}
