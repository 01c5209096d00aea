// Package api provides the REST API server for midi2json
package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/james-see/midi2json/pkg/converter"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title MIDI2JSON API
// @version 1.0
// @description API for converting between standard MIDI files and a JSON note list
// @host localhost:8080
// @BasePath /api/v1

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert/midi-to-json", handleMIDIToJSON)
		v1.POST("/convert/json-to-midi", handleJSONToMIDI)
		v1.GET("/formats", listFormats)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "midi2json",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats and conversions
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"midi", "json"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// handleMIDIToJSON godoc
// @Summary Convert MIDI to JSON
// @Description Upload a MIDI file and receive its JSON note-list representation
// @Tags convert
// @Accept multipart/form-data
// @Produce application/json
// @Param file formData file true "MIDI file to convert"
// @Param format query string false "JSON output style: pretty or compact (default: pretty)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/midi-to-json [post]
func handleMIDIToJSON(c *gin.Context) {
	handleConversion(c, "midi", "json")
}

// handleJSONToMIDI godoc
// @Summary Convert JSON to MIDI
// @Description Upload a JSON note list and receive a standard MIDI file
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "JSON file to convert"
// @Param tempo query number false "Tempo in BPM used when the schema has no tempo map (default: 120)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/json-to-midi [post]
func handleJSONToMIDI(c *gin.Context) {
	handleConversion(c, "json", "midi")
}

func handleConversion(c *gin.Context, fromFormat, toFormat string) {
	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	// Read file content
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	// Converter options from query parameters
	style, err := converter.ParseStyle(c.DefaultQuery("format", "pretty"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tempo, err := strconv.ParseFloat(c.DefaultQuery("tempo", "120"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tempo value"})
		return
	}

	conv := converter.New(
		converter.WithStyle(style),
		converter.WithDefaultTempo(tempo),
	)

	// Perform conversion
	var result []byte
	var outputExt string

	switch fromFormat + "2" + toFormat {
	case "midi2json":
		result, err = conv.MIDIToJSON(data)
		outputExt = ".json"
	case "json2midi":
		result, err = conv.JSONToMIDI(data)
		outputExt = ".mid"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported conversion"})
		return
	}

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Generate output filename
	outputName := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	if outputName == "" {
		outputName = "converted"
	}
	outputName += outputExt

	// Set content type and headers
	var contentType string
	switch toFormat {
	case "midi":
		contentType = "audio/midi"
	default:
		contentType = "application/json"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Data(http.StatusOK, contentType, result)
}
