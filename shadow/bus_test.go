package shadow

import "testing"

func TestBusReadBeforeWrite(t *testing.T) {
	var b Bus
	for _, clk := range []int64{0, 1, 100000} {
		if v := b.Read(clk); v != 0 {
			t.Fatalf("Read(%d) = %#x before any write, want 0", clk, v)
		}
	}
}

func TestBusReadImmediately(t *testing.T) {
	var b Bus
	b.Store(0xa5, 1000)
	if v := b.Read(1000); v != 0xa5 {
		t.Fatalf("Read = %#x, want 0xa5", v)
	}
	if v := b.Read(1000 + BitDecayCycles); v != 0xa5 {
		t.Fatalf("Read at first decay boundary = %#x, want 0xa5", v)
	}
}

func TestBusDecaysTopBitFirst(t *testing.T) {
	var b Bus
	b.Store(0xff, 0)

	want := []uint8{0x7f, 0x3f, 0x1f, 0x0f, 0x07, 0x03, 0x01, 0x00}
	for i, w := range want {
		clk := int64(i+1)*BitDecayCycles + 1
		if v := b.Read(clk); v != w {
			t.Errorf("step %d: Read(%d) = %#x, want %#x", i, clk, v, w)
		}
	}
}

func TestBusFullyDecayed(t *testing.T) {
	var b Bus
	b.Store(0xff, 0)
	if v := b.Read(8*BitDecayCycles + 1); v != 0 {
		t.Fatalf("Read after full decay = %#x, want 0", v)
	}
	if b.Bits != 0 {
		t.Fatalf("Bits = %d, want 0", b.Bits)
	}
}

func TestBusStoreRestartsDecay(t *testing.T) {
	var b Bus
	b.Store(0xff, 0)
	b.Read(3*BitDecayCycles + 1)
	b.Store(0x81, 5000)
	if v := b.Read(5000); v != 0x81 {
		t.Fatalf("Read after second store = %#x, want 0x81", v)
	}
}

func TestBusRebase(t *testing.T) {
	var b Bus
	b.Store(0xff, 100000)
	b.Rebase(100000)
	if b.Clock != 0 {
		t.Fatalf("Clock = %d after rebase, want 0", b.Clock)
	}
	if v := b.Read(BitDecayCycles + 1); v != 0x7f {
		t.Fatalf("Read = %#x, want 0x7f", v)
	}
}
