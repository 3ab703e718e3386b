package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/sunsetsobserver/midi-json-API/archive"
	"github.com/sunsetsobserver/midi-json-API/codec"
	"github.com/sunsetsobserver/midi-json-API/constants"
	"github.com/sunsetsobserver/midi-json-API/model"
	"github.com/sunsetsobserver/midi-json-API/util"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP API",
	Long:  `Runs the HTTP API`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func writeError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: message})
}

// readUploadedBytes accepts either a multipart upload ("file" field) or a
// JSON body with a base64 "data" field.
func readUploadedBytes(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing file field: %v", err)
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	var input model.ConvertRequestBody
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, fmt.Errorf("could not parse request body: %v", err)
	}
	data, err := base64.StdEncoding.DecodeString(input.Data)
	if err != nil {
		return nil, fmt.Errorf("data field is not valid base64: %v", err)
	}
	return data, nil
}

// convertResponse shapes a Score for JSON output, rounding times to 3
// decimals the way the original service did.
func convertResponse(score *model.Score, warnings []string) model.ConvertResponse {
	res := model.ConvertResponse{
		Resolution:     score.Resolution,
		Notes:          []model.Note{},
		Instruments:    []model.Instrument{},
		TempoChanges:   []model.TempoChange{},
		TimeSignatures: []model.TimeSignature{},
		Warnings:       warnings,
	}
	for _, inst := range score.Instruments {
		rounded := inst
		rounded.Notes = make([]model.Note, len(inst.Notes))
		for i, note := range inst.Notes {
			note.Start = util.Round3(note.Start)
			note.Duration = util.Round3(note.Duration)
			rounded.Notes[i] = note
		}
		res.Instruments = append(res.Instruments, rounded)
		res.Notes = append(res.Notes, rounded.Notes...)
	}
	// only times are rounded; BPM values from tempo metas rarely terminate
	// in 3 decimals and are passed through untouched
	for _, change := range score.TempoChanges {
		change.Time = util.Round3(change.Time)
		res.TempoChanges = append(res.TempoChanges, change)
	}
	for _, sig := range score.TimeSignatures {
		sig.Time = util.Round3(sig.Time)
		res.TimeSignatures = append(res.TimeSignatures, sig)
	}
	return res
}

// scoreFromRequest builds the codec input from either JSON shape. The legacy
// flat notes list becomes one default instrument.
func scoreFromRequest(body model.GenerateRequestBody) *model.Score {
	score := &model.Score{
		Resolution:     body.Resolution,
		TempoChanges:   body.TempoChanges,
		TimeSignatures: body.TimeSignatures,
		Instruments:    body.Instruments,
	}
	if len(score.Instruments) == 0 {
		score.Instruments = []model.Instrument{{
			Program: constants.DefaultProgram,
			Notes:   body.Notes,
		}}
	}
	return score
}

func HandleConvert(w http.ResponseWriter, r *http.Request) {
	data, err := readUploadedBytes(r)
	if err != nil {
		writeError(w, err.Error())
		return
	}

	score, warnings, err := codec.Decode(data)
	if err != nil {
		writeError(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(convertResponse(score, warnings))
}

func HandleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, err.Error())
		return
	}

	var input model.GenerateRequestBody
	if err := json.Unmarshal(body, &input); err != nil {
		writeError(w, "could not parse request body: "+err.Error())
		return
	}

	data, err := codec.Encode(scoreFromRequest(input))
	if err != nil {
		writeError(w, err.Error())
		return
	}

	if archive.Enabled() {
		go func() {
			key, err := archive.Store(data)
			if err != nil {
				fmt.Printf("Skipping archive because: %v\n", err)
				return
			}
			fmt.Printf("Archived generated file as %v\n", key)
		}()
	}

	if r.URL.Query().Get("format") == "base64" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.GenerateBase64Response{
			Data: base64.StdEncoding.EncodeToString(data),
		})
		return
	}

	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", `attachment; filename=generated.mid`)
	w.Write(data)
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

func serve() {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/convert-midi", HandleConvert).Methods("POST")
	router.HandleFunc("/generate-midi", HandleGenerate).Methods("POST")
	router.HandleFunc("/healthz", HandleHealth).Methods("GET")

	handler := cors.Default().Handler(router)
	fmt.Printf("Listening on :%v\n", constants.GetPort())
	log.Fatal(http.ListenAndServe(":"+constants.GetPort(), handler))
}
