package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/kerngrid/constants"
	"github.com/jsphweid/kerngrid/file"
	"github.com/jsphweid/kerngrid/model"
	"github.com/jsphweid/kerngrid/util"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var serveOpts file.Options
var serveMetadata bool

// indexed maps the id of every converted file in the output directory
// to its manifest entry.
var indexed map[string]model.ManifestEntry

func init() {
	rootCmd.AddCommand(serveCmd)
	bindConvertFlags(serveCmd, &serveOpts, &serveMetadata)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves conversions over HTTP",
	Long: `Accepts uploads on POST /convert and, when index has been run, serves
its output on GET /scores/{id}.`,
	Run: func(cmd *cobra.Command, args []string) {
		serveOpts = withMetadata(serveOpts, serveMetadata)
		serve()
	},
}

// LoadServeFiles reads the manifest left by index, if there is one.
func LoadServeFiles() {
	indexed = make(map[string]model.ManifestEntry)
	path := filepath.Join(constants.GetOutputDir(), constants.ManifestFilename)
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("No manifest at %v, only /convert is available\n", path)
		return
	}
	for _, entry := range util.ReadBinaryOrPanic[model.Manifest](path) {
		if entry.Output != "" {
			indexed[strings.TrimSuffix(entry.Output, constants.OutputExtension)] = entry
		}
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: err.Error()})
}

// HandleConvert converts the request body. The filename query parameter
// names the format by its extension.
func HandleConvert(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	name := query.Get("filename")
	if !file.IsSupported(name) {
		writeError(w, http.StatusBadRequest, errors.New(fmt.Sprintf("unsupported filename %q", name)))
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := serveOpts
	opts.Recip = opts.Recip || query.Get("recip") == "true"
	if m := query.Get("measures"); m != "" {
		opts.Measures = m
	}

	score, err := file.Parse(name, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, err := file.Convert(name, score, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	kern := doc.String()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.ConvertResponse{
		Id:     uuid.New().String(),
		Format: string(file.FormatOf(name)),
		Kern:   kern,
		Lines:  strings.Count(kern, "\n"),
	})
}

// HandleScore serves a kern file written by index.
func HandleScore(w http.ResponseWriter, r *http.Request) {
	entry, ok := indexed[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, errors.New(fmt.Sprintf("no score %q", mux.Vars(r)["id"])))
		return
	}
	data, err := os.ReadFile(filepath.Join(constants.GetOutputDir(), entry.Output))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Source", entry.Source)
	w.Write(data)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "ok")
}

func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/convert", HandleConvert).Methods("POST")
	router.HandleFunc("/scores/{id}", HandleScore).Methods("GET")
	router.HandleFunc("/health", handleHealth).Methods("GET")
	return cors.Default().Handler(router)
}

func serve() {
	LoadServeFiles()
	fmt.Printf("Listening on :%v\n", constants.GetPort())
	log.Fatal(http.ListenAndServe(":"+constants.GetPort(), NewRouter()))
}
