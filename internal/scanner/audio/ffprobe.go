package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FFprobeReader reads containers through ffprobe. It covers formats such as
// APE and WavPack whose cuesheets live in a CUESHEET tag.
type FFprobeReader struct {
	binary string
}

// NewFFprobeReader creates an ffprobe reader. An empty binary means
// "ffprobe" on PATH.
func NewFFprobeReader(binary string) *FFprobeReader {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobeReader{binary: binary}
}

// Available reports whether the ffprobe binary can be found.
func (p *FFprobeReader) Available() bool {
	_, err := exec.LookPath(p.binary)
	return err == nil
}

// Read implements Reader.
func (p *FFprobeReader) Read(ctx context.Context, path string) (*Container, error) {
	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	return probe.container(), nil
}

// container converts ffprobe output. Stream tags are merged under format
// tags, which is where ffprobe puts container-level comments.
func (o *ffprobeOutput) container() *Container {
	c := &Container{}

	if o.Format.FormatName != "" {
		// "mp3,mp2" -> "mp3"
		c.Format, _, _ = strings.Cut(o.Format.FormatName, ",")
	}
	if o.Format.Duration != "" {
		if dur, err := strconv.ParseFloat(o.Format.Duration, 64); err == nil {
			c.Duration = time.Duration(dur * float64(time.Second))
		}
	}

	tags := make(map[string]string)
	for _, stream := range o.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		c.Codec = stream.CodecName
		if sr, err := strconv.Atoi(stream.SampleRate); err == nil && sr > 0 {
			c.Album.SampleRate = uint32(sr)
		}
		for k, v := range stream.Tags {
			tags[k] = v
		}
		break
	}
	for k, v := range o.Format.Tags {
		tags[k] = v
	}

	c.Album.SampleCount = samplesFor(c.Duration, c.Album.SampleRate)
	c.Comments = commentsFromTags(tags)
	seedFromComments(&c.Album, c.Comments)
	return c
}

// commentsFromTags flattens a tag map into sorted KEY=value entries so that
// write-once resolution does not depend on map order.
func commentsFromTags(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]string, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, k+"="+tags[k])
	}
	return entries
}

// ffprobeOutput represents ffprobe JSON output.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Tags       map[string]string `json:"tags"`
	Filename   string            `json:"filename"`
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
}

type ffprobeStream struct {
	Tags       map[string]string `json:"tags"`
	CodecType  string            `json:"codec_type"`
	CodecName  string            `json:"codec_name"`
	SampleRate string            `json:"sample_rate"`
	Channels   int               `json:"channels"`
}
