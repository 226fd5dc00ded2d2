// Package dataset builds sequence datasets from directories of MIDI files:
// decode, run the transformation pipeline, and persist gob-encoded chunks of
// sequences under an output directory, with a manifest listing the chunks.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mirlib/noteseq/midiio"
	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/processor"
	"github.com/mirlib/noteseq/util"
)

// chunkSize is how many sequences go into one chunk file.
const chunkSize = 256

// PipelineOptions selects the transformations applied to each decoded file.
type PipelineOptions struct {
	// ApplySustain resolves sustain pedal before anything else.
	ApplySustain bool

	// StepsPerQuarter quantizes each segment; 0 skips quantization and the
	// later stages, which require it.
	StepsPerQuarter int

	// SliceBars/HopBars slice every quantized segment into fixed windows;
	// 0 disables slicing.
	SliceBars int
	HopBars   int

	// ExtractMelodies extracts monophonic melodies instead of slices.
	ExtractMelodies bool
	Melodies        processor.MelodiesOptions
}

// Stats accumulates what the pipeline dropped along the way.
type Stats struct {
	FilesSkipped      int
	SegmentsDiscarded int
	Melodies          processor.MelodyStats
}

// ChunkOverview describes one written chunk file.
type ChunkOverview struct {
	Filename     string
	NumSequences int
}

// FileNumToPath numbers the source files of a dataset build.
type FileNumToPath = map[uint32]string

// CreateFileNumMap assigns each path a stable file number.
func CreateFileNumMap(paths []string) FileNumToPath {
	res := make(FileNumToPath)
	for i, v := range paths {
		res[uint32(i)] = v
	}
	return res
}

// RunPipeline applies the configured transformations to one decoded
// sequence. Segments that fail quantization (for example a tempo ramp inside
// one segment) are counted in stats and skipped, not surfaced.
func RunPipeline(s *model.Sequence, opts PipelineOptions, stats *Stats) ([]*model.Sequence, error) {
	var err error
	if opts.ApplySustain {
		s, err = processor.ApplySustain(s)
		if err != nil {
			return nil, err
		}
	}
	if opts.StepsPerQuarter == 0 {
		return []*model.Sequence{s}, nil
	}

	segments, err := processor.SplitOnTimeChanges(s, true)
	if err != nil {
		var rangeErr *model.IntervalOutOfRangeError
		if !errors.As(err, &rangeErr) {
			return nil, err
		}
		// No notes at all; nothing to keep.
		return nil, nil
	}

	var out []*model.Sequence
	for _, segment := range segments {
		qs, err := processor.Quantize(segment, opts.StepsPerQuarter)
		if err != nil {
			stats.SegmentsDiscarded++
			continue
		}
		switch {
		case opts.SliceBars > 0:
			hop := opts.HopBars
			if hop == 0 {
				hop = opts.SliceBars
			}
			slices, err := processor.SliceSequenceInBars(qs, opts.SliceBars, hop, processor.SliceOptions{
				AllowCroppedSlices: true,
			})
			if err != nil {
				stats.SegmentsDiscarded++
				continue
			}
			out = append(out, slices...)
		case opts.ExtractMelodies:
			melodies, mstats, err := processor.ExtractMelodies(qs, opts.Melodies)
			if err != nil {
				stats.SegmentsDiscarded++
				continue
			}
			mergeMelodyStats(&stats.Melodies, mstats)
			// Repeated sections yield byte-for-byte identical melodies.
			out = append(out, model.UniqueSequences(melodies)...)
		default:
			out = append(out, qs)
		}
	}
	return out, nil
}

// Build decodes every MIDI file under mediaDir (up to maxNum when positive),
// runs the pipeline and writes chunk files plus a manifest into outDir.
func Build(mediaDir, outDir string, maxNum int, opts PipelineOptions) (Stats, error) {
	var stats Stats
	if err := recreateDir(outDir); err != nil {
		return stats, err
	}

	paths := util.GatherAllMidiPaths(mediaDir, maxNum)
	fileNums := CreateFileNumMap(paths)

	var overviews []ChunkOverview
	var pending []*model.Sequence
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		overview, err := writeChunk(outDir, pending)
		if err != nil {
			return err
		}
		overviews = append(overviews, overview)
		pending = nil
		return nil
	}

	for i, path := range paths {
		fmt.Printf("Processing %v of %v midi files\n", i+1, len(paths))
		seq, err := midiio.ReadSequenceFile(path)
		if err != nil {
			fmt.Printf("Skipping %v because: %v\n", path, err)
			stats.FilesSkipped++
			continue
		}
		seq.ID = filepath.Base(path)
		results, err := RunPipeline(seq, opts, &stats)
		if err != nil {
			fmt.Printf("Skipping %v because: %v\n", path, err)
			stats.FilesSkipped++
			continue
		}
		pending = append(pending, results...)
		if len(pending) >= chunkSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}

	if err := util.CreateBinary(manifestPath(outDir), overviews); err != nil {
		return stats, err
	}
	if err := util.CreateBinary(fileNumsPath(outDir), fileNums); err != nil {
		return stats, err
	}
	return stats, nil
}

// LoadManifest reads the chunk overviews written by Build.
func LoadManifest(outDir string) ([]ChunkOverview, error) {
	return util.ReadBinary[[]ChunkOverview](manifestPath(outDir))
}

// LoadChunk reads one chunk file back into sequences.
func LoadChunk(outDir, filename string) ([]*model.Sequence, error) {
	return util.ReadBinary[[]*model.Sequence](filepath.Join(outDir, filename))
}

// LoadAll reads every chunk listed in the manifest.
func LoadAll(outDir string) ([]*model.Sequence, error) {
	overviews, err := LoadManifest(outDir)
	if err != nil {
		return nil, err
	}
	var all []*model.Sequence
	for _, o := range overviews {
		seqs, err := LoadChunk(outDir, o.Filename)
		if err != nil {
			return nil, err
		}
		all = append(all, seqs...)
	}
	return all, nil
}

func writeChunk(outDir string, seqs []*model.Sequence) (ChunkOverview, error) {
	overview := ChunkOverview{
		Filename:     uuid.New().String() + ".dat",
		NumSequences: len(seqs),
	}
	err := util.CreateBinary(filepath.Join(outDir, overview.Filename), seqs)
	return overview, err
}

func manifestPath(outDir string) string { return filepath.Join(outDir, "allChunks.dat") }
func fileNumsPath(outDir string) string { return filepath.Join(outDir, "fileNums.dat") }

func recreateDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o777)
}

func mergeMelodyStats(dst *processor.MelodyStats, src processor.MelodyStats) {
	dst.PolyphonicTracksDiscarded += src.PolyphonicTracksDiscarded
	dst.TooShortDiscarded += src.TooShortDiscarded
	dst.TooFewPitchesDiscarded += src.TooFewPitchesDiscarded
	dst.TruncatedToMaxBars += src.TruncatedToMaxBars
	if dst.MelodyLengthsBars == nil {
		dst.MelodyLengthsBars = make(map[int]int)
	}
	for k, v := range src.MelodyLengthsBars {
		dst.MelodyLengthsBars[k] += v
	}
}
