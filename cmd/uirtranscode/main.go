/*
NAME
  uirtranscode

DESCRIPTION
  uirtranscode is a CLI that reads a .uir file, transcodes one requested
  image level's color slice to a chosen target format, and optionally
  writes a PNG preview of the transcoded ETC1 result for manual
  inspection.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main implements the uirtranscode CLI.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/ausocean/utils/logging"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/uirtranscode/codec/uir/etc1"
	"github.com/ausocean/uirtranscode/container/uir"
	"github.com/ausocean/uirtranscode/transcoder"
	"github.com/ausocean/uirtranscode/transcoder/config"
)

// Logging configuration.
const (
	logPath      = "uirtranscode.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

var formatNames = map[string]config.Format{
	"etc1":   config.FormatETC1,
	"bc1":    config.FormatBC1,
	"bc3":    config.FormatBC3,
	"bc4":    config.FormatBC4,
	"bc5":    config.FormatBC5,
	"bc7m6":  config.FormatBC7M6,
	"eac_a8": config.FormatETC2EACA8,
	"pvrtc1": config.FormatPVRTC1,
}

func main() {
	inPath := flag.String("in", "", "path to the input .uir file")
	target := flag.String("target", "etc1", "target format: etc1, bc1, bc3, bc4, bc5, bc7m6, eac_a8, pvrtc1")
	imageIndex := flag.Uint("image", 0, "image index to transcode")
	levelIndex := flag.Uint("level", 0, "mip level index to transcode")
	previewPath := flag.String("preview", "", "optional path to write a PNG preview (ETC1 target only)")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, fileLog, logSuppress)
	transcoder.SetLogger(log)

	if *inPath == "" {
		log.Fatal("no -in file provided, check usage")
	}

	fmtTarget, ok := formatNames[*target]
	if !ok {
		log.Fatal("unrecognized -target", "target", *target)
	}

	buf, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatal("failed to read input file", "error", err)
	}

	f, err := uir.ParseFile(buf)
	if err != nil {
		log.Fatal("failed to parse UIR container", "error", err)
	}

	tc := transcoder.NewTranscoder(nil)
	if err := tc.StartTranscoding(f); err != nil {
		log.Fatal("failed to start transcoding", "error", err)
	}

	info, ok := f.GetImageLevelInfo(uint16(*imageIndex), uint8(*levelIndex))
	if !ok {
		log.Fatal("no such image level", "image", *imageIndex, "level", *levelIndex)
	}

	stride := info.BlocksX * fmtTarget.BytesPerBlock()
	dst := make([]byte, stride*info.BlocksY)
	if err := tc.TranscodeImageLevel(f, uint16(*imageIndex), uint8(*levelIndex), fmtTarget, 0, dst, stride); err != nil {
		log.Fatal("transcode failed", "error", err)
	}

	fmt.Printf("transcoded image %d level %d (%dx%d blocks) to %s: %d bytes\n",
		*imageIndex, *levelIndex, info.BlocksX, info.BlocksY, *target, len(dst))

	if *previewPath != "" {
		if fmtTarget != config.FormatETC1 {
			log.Fatal("-preview is only supported for -target etc1")
		}
		if err := writeETC1Preview(dst, info.BlocksX, info.BlocksY, *previewPath); err != nil {
			log.Fatal("failed to write preview", "error", err)
		}
	}
}

// writeETC1Preview independently decodes the just-transcoded ETC1 blocks
// back to RGB (exercising the same cross-decoder path as the ETC1
// package's own tests) and writes them as a PNG for manual inspection.
func writeETC1Preview(etc1Data []byte, blocksX, blocksY int, path string) error {
	img := image.NewNRGBA(image.Rect(0, 0, blocksX*4, blocksY*4))
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			off := (by*blocksX + bx) * etc1.BytesPerBlock
			block := etc1.DecodeToRGB(etc1Data[off : off+etc1.BytesPerBlock])
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					c := block[x+y*4]
					img.Set(bx*4+x, by*4+y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
				}
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
