package servicepoint_test

import (
	"context"
	"fmt"
	"log"

	"github.com/pior/servicepoint"
)

func Example() {
	conn := servicepoint.Fake()
	defer conn.Close()

	grid, err := servicepoint.NewCp437Grid(5, 1)
	if err != nil {
		log.Fatal(err)
	}
	if err := grid.SetRowString(0, "Hello"); err != nil {
		log.Fatal(err)
	}

	cmd, err := servicepoint.NewCp437Data(0, 0, grid)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(cmd)

	if err := conn.Send(context.Background(), cmd); err != nil {
		log.Fatal(err)
	}

	// The grid now belongs to the command, which was consumed by Send.
	fmt.Println(grid.IsValid(), cmd.IsValid())
	// Output:
	// Cp437Data(0, 0, 5x1)
	// false false
}

func ExampleNewBitmapLinearWin() {
	bitmap := servicepoint.NewMaxSizedBitmap()
	for x := range servicepoint.PixelWidth {
		if _, err := bitmap.Set(x, x%servicepoint.PixelHeight, true); err != nil {
			log.Fatal(err)
		}
	}

	cmd, err := servicepoint.NewBitmapLinearWin(0, 0, bitmap, servicepoint.Zstd)
	if err != nil {
		log.Fatal(err)
	}

	packet, err := servicepoint.NewPacket(cmd)
	if err != nil {
		log.Fatal(err)
	}
	header, err := packet.Header()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("0x%04x %d %d %d %d\n", header.CommandCode, header.A, header.B, header.C, header.D)
	// Output:
	// 0x001a 0 0 56 160
}

func ExampleClient() {
	client, err := servicepoint.NewClient([]string{"display-1", "display-2"}, servicepoint.Config{
		Dial: func(ctx context.Context, addr string) (*servicepoint.Connection, error) {
			return servicepoint.Fake(), nil
		},
		SkipUnchanged: true,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	ctx := context.Background()
	for range 3 {
		if err := client.Send(ctx, servicepoint.NewClear()); err != nil {
			log.Fatal(err)
		}
	}

	stats := client.Stats()
	fmt.Printf("sent=%d skipped=%d\n", stats.Sent, stats.Skipped)
	// Output:
	// sent=2 skipped=4
}

func ExampleCommandFromPacket() {
	packet, err := servicepoint.TryLoadPacket([]byte{0x00, 0x07, 0, 0, 0, 0, 0, 0, 0, 0, 9})
	if err != nil {
		log.Fatal(err)
	}

	cmd, err := servicepoint.CommandFromPacket(packet)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(cmd)
	// Output:
	// Brightness(9)
}
