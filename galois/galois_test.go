package galois

import "testing"

func TestAddIsXor(t *testing.T) {
	if Add(5, 3) != 5^3 {
		t.Fatalf("Add should be XOR")
	}
}

func TestMulZero(t *testing.T) {
	for a := 0; a < 256; a++ {
		if Mul(byte(a), 0) != 0 || Mul(0, byte(a)) != 0 {
			t.Fatalf("Mul with 0 operand must be 0 (a=%d)", a)
		}
	}
}

func TestMulIdentity(t *testing.T) {
	for a := 0; a < 256; a++ {
		if Mul(byte(a), 1) != byte(a) {
			t.Fatalf("Mul(%d, 1) = %d, want %d", a, Mul(byte(a), 1), a)
		}
	}
}

func TestMulCommutative(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			if Mul(byte(a), byte(b)) != Mul(byte(b), byte(a)) {
				t.Fatalf("Mul(%d,%d) != Mul(%d,%d)", a, b, b, a)
			}
		}
	}
}

func TestDivByZero(t *testing.T) {
	if _, err := Div(5, 0); err != ErrDivByZero {
		t.Fatalf("expected ErrDivByZero, got %v", err)
	}
}

func TestDivRoundTrip(t *testing.T) {
	for a := 1; a < 256; a++ {
		for b := 1; b < 256; b++ {
			prod := Mul(byte(a), byte(b))
			q, err := Div(prod, byte(b))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q != byte(a) {
				t.Fatalf("Div(Mul(%d,%d), %d) = %d, want %d", a, b, b, q, a)
			}
		}
	}
}

func TestInv(t *testing.T) {
	for a := 1; a < 256; a++ {
		if Mul(byte(a), Inv(byte(a))) != 1 {
			t.Fatalf("a * Inv(a) != 1 for a=%d", a)
		}
	}
}

func TestExpMatchesRepeatedMul(t *testing.T) {
	for a := 1; a < 256; a++ {
		want := byte(1)
		for n := 0; n < 8; n++ {
			if Exp(byte(a), n) != want {
				t.Fatalf("Exp(%d, %d) = %d, want %d", a, n, Exp(byte(a), n), want)
			}
			want = Mul(want, byte(a))
		}
	}
}

func TestExpZero(t *testing.T) {
	if Exp(0, 0) != 1 {
		t.Fatalf("Exp(0,0) must be 1 by convention")
	}
	if Exp(0, 3) != 0 {
		t.Fatalf("Exp(0, n>0) must be 0")
	}
}
