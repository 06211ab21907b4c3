package sfzkit_test

import (
	"fmt"
	"os"
	"strings"
	"testing/fstest"

	"github.com/sfzkit/sfzkit"
)

func ExampleLoad() {
	source := `<group>
lokey=60 hikey=64 volume=-3

<region> sample=c4.wav
`

	fsys := fstest.MapFS{
		"piano.sfz": &fstest.MapFile{Data: []byte(source)},
	}

	doc, err := sfzkit.Load(fsys, "piano.sfz")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for region := range doc.Regions() {
		fmt.Println("sample:", region.Opcode("sample").Raw())
		fmt.Println("volume:", region.Opcode("volume").Raw())
	}
	// Output:
	// sample: c4.wav
	// volume: -3
}

func ExampleHeader_IsTriggeredBy() {
	source := `<region> lokey=60 hikey=64 sample=c4.wav`

	doc, err := sfzkit.Parse(strings.NewReader(source), "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	key := 62
	for region := range doc.Regions() {
		hit, err := region.IsTriggeredBy(sfzkit.Criteria{LoKey: &key, HiKey: &key})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("triggered:", hit)
	}
	// Output:
	// triggered: true
}

func ExampleSFZ_WriteCanonicalTo() {
	source := `<region> volume=-6 sample=c4.wav lokey=60`

	doc, err := sfzkit.Parse(strings.NewReader(source), "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if _, err := doc.WriteCanonicalTo(os.Stdout); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	// Output:
	// <region>
	// lokey=60
	// sample=c4.wav
	// volume=-6
}
