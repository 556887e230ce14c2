package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/pkg/profile"

	bincode "bincode-go"
)

// Poke-at-it playground: encodes a few sample shapes under different
// Params and hexdumps the results. -profile additionally CPU-profiles a
// tight marshal/unmarshal/release loop and drops cpu.pprof in cwd.

type tokenMint struct {
	MintAuthority   bincode.Option[[32]byte]
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority bincode.Option[[32]byte]
}

type ping struct {
	Seq uint32
}

type blob struct {
	Name string
	Body []byte
}

type event struct {
	Kind uint8 `bincode:"tag"`
	Ping ping  `bincode:"variant=0"`
	Blob blob  `bincode:"variant=1"`
}

func dump(label string, value any, p bincode.Params) {
	buf, err := bincode.Marshal(value, p)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s  (%d bytes, endian=%s, ints=%s)\n", label, len(buf), p.Endian, p.IntEncoding)
	fmt.Println(Hexdump(buf))
	fmt.Println()
}

func main() {
	doProfile := flag.Bool("profile", false, "CPU-profile an encode/decode loop")
	flag.Parse()

	var auth [32]byte
	for i := range auth {
		auth[i] = byte(i)
	}
	mint := tokenMint{
		MintAuthority: bincode.Some(auth),
		Supply:        420_000_000,
		Decimals:      9,
		IsInitialized: true,
	}

	dump("token mint / standard", mint, bincode.Standard)
	dump("token mint / legacy", mint, bincode.Legacy)
	dump("event / varint ints",
		event{Kind: 1, Blob: blob{Name: "report", Body: []byte("hello world")}},
		bincode.Params{IntEncoding: bincode.VarInt})
	dump("optionals / big-endian",
		[]*uint16{ptr(uint16(10)), nil, ptr(uint16(3000))},
		bincode.Params{Endian: bincode.BigEndian})

	if *doProfile {
		defer profile.Start(profile.ProfilePath(".")).Stop()
		loop(mint)
	}
}

func ptr[T any](v T) *T { return &v }

func loop(mint tokenMint) {
	buf := make([]byte, 0, 128)
	for i := 0; i < 1_000_000; i++ {
		var err error
		buf, err = bincode.Append(buf[:0], mint, bincode.Standard)
		if err != nil {
			log.Fatal(err)
		}
		var back tokenMint
		if _, err = bincode.Unmarshal(buf, &back, bincode.Standard); err != nil {
			log.Fatal(err)
		}
		if err = bincode.Release(&back); err != nil {
			log.Fatal(err)
		}
	}
}
