// Package inspect loads a firmware image and runs every analysis over it
// once, producing a Snapshot for the command line and the tree browser.
//
// A load fails only when the file cannot be read, the container cannot be
// parsed or the requested target is unknown. Malformed debug info is logged
// and recorded on the Snapshot while every other result is kept.
//
//	snap, err := inspect.Load("build/app.elf", inspect.Options{Target: "STM32F407VGTx"})
//	if err != nil {
//	    return err
//	}
//	for _, seg := range snap.Segments {
//	    fmt.Println(seg.Name, seg.Conflicts)
//	}
//
// Changing the target rebuilds only the target dependent parts:
//
//	err = snap.Retarget("nRF52840_xxAA")
package inspect
