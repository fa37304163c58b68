// Package puffin reads and writes Puffin files: a container format used by
// table-format metadata layers (statistics sidecars, sketches, indexes) to
// store a sequence of opaque binary blobs alongside structured metadata.
//
// A Puffin file is a short header, a run of independently compressed blob
// payloads, and a trailing footer carrying a JSON index plus a fixed-size
// struct that bootstraps random-access readers:
//
//	"PFA1" | blob payload 1 | blob payload 2 | ... | "PFA1" | footer JSON | FooterStruct
//
// # Writing
//
//	sink, err := puffin.CreateFile("stats.puffin", false)
//	if err != nil {
//	    return err
//	}
//	w, err := puffin.NewWriteBuilder(sink).
//	    CreatedBy("my-tool 1.0").
//	    CompressBlobs(puffin.Zstd).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	meta, err := w.WriteBlob(payload, "apache-datasketches-theta-v1",
//	    []int32{1}, snapshotID, sequenceNumber, nil, nil)
//	if err != nil {
//	    return err
//	}
//	err = w.Close()
//
// # Reading
//
//	source, err := puffin.OpenFile("stats.puffin")
//	if err != nil {
//	    return err
//	}
//	r, err := puffin.OpenReader(source, nil, nil)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	blobs, err := r.GetBlobs()
//	if err != nil {
//	    return err
//	}
//	for _, meta := range blobs {
//	    data, err := r.ReadBlob(meta)
//	    // process data
//	}
//
// The reader and writer are not safe for concurrent use from multiple
// goroutines; a single instance must be confined to one caller at a time.
package puffin
