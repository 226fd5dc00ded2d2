package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/mirlib/noteseq/midiio"
	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/processor"
)

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "listen port")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the transformations over HTTP",
	Long:  `POST a MIDI file to /sustain, /slices or /melodies.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

// SequenceSummary is the JSON shape returned for each derived sequence.
type SequenceSummary struct {
	Notes      int     `json:"notes"`
	TotalTime  float64 `json:"totalTime"`
	TotalSteps int     `json:"totalSteps"`
}

// MelodiesResponse is the JSON shape of the /melodies endpoint.
type MelodiesResponse struct {
	Melodies      []SequenceSummary `json:"melodies"`
	Polyphonic    int               `json:"polyphonicTracksDiscarded"`
	TooShort      int               `json:"tooShortDiscarded"`
	TooFewPitches int               `json:"tooFewPitchesDiscarded"`
}

func readBodySequence(w http.ResponseWriter, r *http.Request) *model.Sequence {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return nil
	}
	mf, err := smf.ReadFrom(bytes.NewReader(body))
	if err != nil {
		http.Error(w, "could not parse MIDI: "+err.Error(), http.StatusBadRequest)
		return nil
	}
	seq, err := midiio.FromSMF(mf)
	if err != nil {
		http.Error(w, "could not decode MIDI: "+err.Error(), http.StatusBadRequest)
		return nil
	}
	return seq
}

func writeMidiResponse(w http.ResponseWriter, seq *model.Sequence) {
	mf, err := midiio.ToSMF(seq, -1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	mf.WriteTo(w)
}

func summarize(seqs []*model.Sequence) []SequenceSummary {
	res := make([]SequenceSummary, 0, len(seqs))
	for _, seq := range seqs {
		res = append(res, SequenceSummary{
			Notes:      len(seq.Notes),
			TotalTime:  seq.TotalTime,
			TotalSteps: seq.TotalQuantizedSteps,
		})
	}
	return res
}

// HandleSustain resolves sustain pedal and returns the rewritten MIDI.
func HandleSustain(w http.ResponseWriter, r *http.Request) {
	seq := readBodySequence(w, r)
	if seq == nil {
		return
	}
	out, err := processor.ApplySustain(seq)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeMidiResponse(w, out)
}

// HandleSlices slices the posted MIDI into bar windows and returns their
// summaries as JSON.
func HandleSlices(w http.ResponseWriter, r *http.Request) {
	seq := readBodySequence(w, r)
	if seq == nil {
		return
	}
	qs, err := processor.Quantize(seq, 4)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	slices, err := processor.SliceSequenceInBars(qs, 4, 4, processor.SliceOptions{
		AllowCroppedSlices: true,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summarize(slices))
}

// HandleMelodies extracts melodies from the posted MIDI and returns their
// summaries and the discard counters as JSON.
func HandleMelodies(w http.ResponseWriter, r *http.Request) {
	seq := readBodySequence(w, r)
	if seq == nil {
		return
	}
	qs, err := processor.Quantize(seq, 4)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	melodies, stats, err := processor.ExtractMelodies(qs, processor.DefaultMelodiesOptions())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MelodiesResponse{
		Melodies:      summarize(melodies),
		Polyphonic:    stats.PolyphonicTracksDiscarded,
		TooShort:      stats.TooShortDiscarded,
		TooFewPitches: stats.TooFewPitchesDiscarded,
	})
}

func serve() {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/sustain", HandleSustain).Methods("POST")
	router.HandleFunc("/slices", HandleSlices).Methods("POST")
	router.HandleFunc("/melodies", HandleMelodies).Methods("POST")

	handler := cors.Default().Handler(router)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", servePort), handler))
}
