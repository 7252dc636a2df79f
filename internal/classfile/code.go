package classfile

import (
	"encoding/binary"
	"fmt"
)

// Opcodes that read the constant pool or need special handling.
const (
	OpLdc             = 0x12
	OpLdcW            = 0x13
	OpLdc2W           = 0x14
	OpGetStatic       = 0xb2
	OpPutStatic       = 0xb3
	OpGetField        = 0xb4
	OpPutField        = 0xb5
	OpInvokeVirtual   = 0xb6
	OpInvokeSpecial   = 0xb7
	OpInvokeStatic    = 0xb8
	OpInvokeInterface = 0xb9
	OpInvokeDynamic   = 0xba
	OpNew             = 0xbb
	OpANewArray       = 0xbd
	OpCheckCast       = 0xc0
	OpInstanceOf      = 0xc1
	OpWide            = 0xc4
	OpMultiANewArray  = 0xc5

	opIinc         = 0x84
	opTableSwitch  = 0xaa
	opLookupSwitch = 0xab
)

// opLength holds instruction sizes including the opcode; 0 is variable
// or undefined.
var opLength = func() [256]uint8 {
	var t [256]uint8

	set := func(from, to int, n uint8) {
		for op := from; op <= to; op++ {
			t[op] = n
		}
	}

	set(0x00, 0x0f, 1)
	set(0x10, 0x10, 2) // bipush
	set(0x11, 0x11, 3) // sipush
	set(0x12, 0x12, 2) // ldc
	set(0x13, 0x14, 3) // ldc_w, ldc2_w
	set(0x15, 0x19, 2) // loads
	set(0x1a, 0x35, 1)
	set(0x36, 0x3a, 2) // stores
	set(0x3b, 0x83, 1)
	set(0x84, 0x84, 3) // iinc
	set(0x85, 0x98, 1)
	set(0x99, 0xa8, 3) // branches, goto, jsr
	set(0xa9, 0xa9, 2) // ret
	set(0xac, 0xb1, 1) // returns
	set(0xb2, 0xb8, 3) // field access, invokes
	set(0xb9, 0xba, 5) // invokeinterface, invokedynamic
	set(0xbb, 0xbb, 3) // new
	set(0xbc, 0xbc, 2) // newarray
	set(0xbd, 0xbd, 3) // anewarray
	set(0xbe, 0xbf, 1)
	set(0xc0, 0xc1, 3) // checkcast, instanceof
	set(0xc2, 0xc3, 1)
	set(0xc5, 0xc5, 4) // multianewarray
	set(0xc6, 0xc7, 3) // ifnull, ifnonnull
	set(0xc8, 0xc9, 5) // goto_w, jsr_w

	return t
}()

// insnLength returns the size of the instruction at pos.
func insnLength(code []byte, pos int) (int, error) {
	op := code[pos]
	if n := opLength[op]; n != 0 {
		return int(n), nil
	}

	u32 := func(at int) (int32, error) {
		if at+4 > len(code) {
			return 0, fmt.Errorf("%w: switch at %d", ErrTruncated, pos)
		}

		return int32(binary.BigEndian.Uint32(code[at:])), nil
	}

	switch op {
	case opTableSwitch:
		base := switchBase(pos)

		low, err := u32(base + 4)
		if err != nil {
			return 0, err
		}

		high, err := u32(base + 8)
		if err != nil {
			return 0, err
		}

		if high < low {
			return 0, fmt.Errorf("%w: tableswitch bounds at %d", ErrMalformed, pos)
		}

		return base + 12 + int(high-low+1)*4 - pos, nil
	case opLookupSwitch:
		base := switchBase(pos)

		npairs, err := u32(base + 4)
		if err != nil {
			return 0, err
		}

		if npairs < 0 {
			return 0, fmt.Errorf("%w: lookupswitch pairs at %d", ErrMalformed, pos)
		}

		return base + 8 + int(npairs)*8 - pos, nil
	case OpWide:
		if pos+1 >= len(code) {
			return 0, fmt.Errorf("%w: wide at %d", ErrTruncated, pos)
		}

		if code[pos+1] == opIinc {
			return 6, nil
		}

		return 4, nil
	default:
		return 0, fmt.Errorf("%w: opcode 0x%02x at %d", ErrMalformed, op, pos)
	}
}

// switchBase skips the padding after a switch opcode at pos.
func switchBase(pos int) int {
	return pos + 1 + (4-(pos+1)%4)%4
}

// operandWidth returns the pool index width of op, or 0 when op does not
// read the pool.
func operandWidth(op byte) uint8 {
	switch op {
	case OpLdc:
		return 1
	case OpLdcW, OpLdc2W,
		OpGetStatic, OpPutStatic, OpGetField, OpPutField,
		OpInvokeVirtual, OpInvokeSpecial, OpInvokeStatic, OpInvokeInterface, OpInvokeDynamic,
		OpNew, OpANewArray, OpCheckCast, OpInstanceOf, OpMultiANewArray:
		return 2
	default:
		return 0
	}
}

// scanCode lists the pool-reading instructions of code.
func scanCode(code []byte, pool *pool) ([]Insn, error) {
	var insns []Insn

	for pos := 0; pos < len(code); {
		n, err := insnLength(code, pos)
		if err != nil {
			return nil, err
		}

		if pos+n > len(code) {
			return nil, fmt.Errorf("%w: instruction at %d", ErrTruncated, pos)
		}

		op := code[pos]
		if w := operandWidth(op); w != 0 {
			var idx uint16
			if w == 1 {
				idx = uint16(code[pos+1])
			} else {
				idx = binary.BigEndian.Uint16(code[pos+1:])
			}

			c, err := pool.get(idx)
			if err != nil {
				return nil, fmt.Errorf("instruction at %d: %w", pos, err)
			}

			insns = append(insns, Insn{Offset: pos, Op: op, Const: c, Width: w})
		}

		pos += n
	}

	return insns, nil
}
