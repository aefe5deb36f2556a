// Package targets provides the target-descriptor catalog and the memory
// region view that conflict detection consumes.
//
// The catalog is a YAML file embedded with //go:embed. Users can extend or
// override it with their own files in the same schema:
//
//	targets:
//	  - name: MyBoard
//	    family: custom
//	    memory_map:
//	      - kind: nvm      # ram | nvm | generic
//	        name: FLASH
//	        start: 0x08000000
//	        end: 0x08080000
//
// Lookup normalizes a target's map into MemoryRegions: ram entries become
// Ram, nvm entries become Flash, and generic entries become Ram only when
// their name mentions "ram". The result is sorted by start address with a
// stable sort, so ties keep catalog order.
//
//	db, _ := targets.LoadDatabase()
//	regions, err := db.Lookup("STM32F407VGTx")
//	if errors.Is(err, targets.ErrTargetNotFound) { ... }
//
// All ranges are half-open.
package targets
