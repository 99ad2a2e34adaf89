package main

/*------------------------------------------------------------------
 *
 * Name:	shacplay
 *
 * Purpose:	Render a .shac container to binaural stereo, either
 *		live on the default audio device or offline to a WAV
 *		file.
 *
 * Description:	Navigation input devices are out of scope here, so the
 *		listener either sits still at the origin or follows a
 *		scripted circular walk (--orbit), which exercises the
 *		same pose handoff an interactive frontend would use:
 *		this thread publishes pose snapshots while the audio
 *		callback consumes them.
 *
 * Examples:	shacplay mix.shac
 *		shacplay --orbit 3 mix.shac
 *		shacplay -o render.wav --orbit 3 mix.shac
 *
 *----------------------------------------------------------------*/

import (
	"fmt"
	"math"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"

	shac "github.com/doismellburning/shac/src"
)

var log = charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "shacplay"})

func main() {
	var output = pflag.StringP("output", "o", "", "Render to this WAV file instead of the audio device.")
	var block = pflag.IntP("block", "b", shac.DefaultBlockSize, "Block size in frames.")
	var orbit = pflag.Float64P("orbit", "r", 0, "Walk the listener in a circle of this radius (meters). 0 stays at the origin.")
	var period = pflag.Float64P("period", "p", 10, "Seconds per orbit revolution.")
	var verbose = pflag.BoolP("verbose", "v", false, "Debug logging.")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]... <FILE>\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *verbose {
		log.SetLevel(charmlog.DebugLevel)
	}
	shac.SetLogger(log)

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(pflag.Arg(0))
	if err != nil {
		log.Fatal("read", "err", err)
	}
	file, err := shac.Parse(data)
	if err != nil {
		log.Fatal("parse", "err", err)
	}

	dec, err := shac.Open(file, nil, shac.DecoderOptions{BlockSize: *block})
	if err != nil {
		log.Fatal("open decoder", "err", err)
	}
	defer dec.Close()

	log.Info("playing", "order", file.Header.Order, "layers", len(file.Layers),
		"duration", time.Duration(float64(dec.Duration())/float64(dec.SampleRate())*float64(time.Second)))

	if *output != "" {
		if err := renderOffline(dec, *output, *orbit, *period); err != nil {
			log.Fatal("render", "err", err)
		}
		return
	}
	if err := playLive(dec, *orbit, *period); err != nil {
		log.Fatal("play", "err", err)
	}
}

// orbitPose computes the scripted listener pose at time t: walking a circle
// while facing its center, like pacing around the scene.
func orbitPose(radius, period, t float64) shac.ListenerPose {
	if radius <= 0 {
		return shac.ListenerPose{}
	}
	var angle = 2 * math.Pi * t / period
	var pose = shac.ListenerPose{Yaw: angle + math.Pi}
	pose.Position.X = radius * math.Sin(angle)
	pose.Position.Z = radius * math.Cos(angle)
	return pose
}

func renderOffline(dec *shac.Decoder, path string, radius, period float64) error {
	var rate = dec.SampleRate()
	var buf = make([]float32, dec.BlockSize()*2)
	var rendered []float32
	var frames int
	for {
		var t = float64(frames) / float64(rate)
		dec.SetPose(orbitPose(radius, period, t))
		var n = dec.ProduceBlock(buf)
		if n == 0 {
			break
		}
		rendered = append(rendered, buf[:n*2]...)
		frames += n
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = shac.WriteWAVStereo(f, rendered, rate)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		log.Info("rendered", "path", path, "frames", frames, "peak", peak(rendered))
	}
	return err
}

func playLive(dec *shac.Decoder, radius, period float64) error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	defer portaudio.Terminate()

	var done = make(chan struct{})
	var blocks, maxAbs = 0, float32(0)

	stream, err := portaudio.OpenDefaultStream(0, 2, float64(dec.SampleRate()), dec.BlockSize(),
		func(out []float32) {
			// Audio callback: one ProduceBlock per buffer, then padding,
			// peak tracking, and the end-of-stream signal.
			var n = dec.ProduceBlock(out)
			for i := n * 2; i < len(out); i++ {
				out[i] = 0
			}
			blocks++
			if p := peak(out[:n*2]); p > maxAbs {
				maxAbs = p
			}
			if n == 0 {
				select {
				case <-done:
				default:
					close(done)
				}
			}
		})
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return err
	}

	// Publish pose snapshots while the audio thread runs; the slot makes
	// each block see one consistent pose.
	var start = time.Now()
	var tick = time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-done:
			if err := stream.Stop(); err != nil {
				return err
			}
			log.Info("finished", "blocks", blocks, "peak", maxAbs)
			return nil
		case now := <-tick.C:
			dec.SetPose(orbitPose(radius, period, now.Sub(start).Seconds()))
		}
	}
}

func peak(samples []float32) float32 {
	var p float32
	for _, v := range samples {
		if v < 0 {
			v = -v
		}
		if v > p {
			p = v
		}
	}
	return p
}
