// Command pngdecode decodes a PNG file and prints its dimensions and a
// handful of sample values, for manual inspection of the decoder.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/trvimaging/pngdecode"
)

func main() {
	var path string
	var sampleBits int
	flag.StringVar(&path, "i", "", "Input PNG file path")
	flag.IntVar(&sampleBits, "sample", 8, "Sample bit depth to decode to: 8 or 16")
	flag.Parse()

	if path == "" {
		log.Fatal("pngdecode: -i is required")
	}

	switch sampleBits {
	case 8:
		img, err := pngdecode.DecodeFile8(path)
		if err != nil {
			log.Fatalf("pngdecode: %v", err)
		}
		printSummary(img.Width, img.Height, img.Channels, img.Data)
	case 16:
		img, err := pngdecode.DecodeFile16(path)
		if err != nil {
			log.Fatalf("pngdecode: %v", err)
		}
		printSummary(img.Width, img.Height, img.Channels, img.Data)
	default:
		log.Fatalf("pngdecode: -sample must be 8 or 16, got %d", sampleBits)
	}
}

func printSummary[T pngdecode.Sample](width, height, channels int, data []T) {
	fmt.Printf("%d %d %d\n", width, height, channels)
	if len(data) == 0 {
		return
	}
	fmt.Printf("first=%v last=%v\n", data[0], data[len(data)-1])
}
