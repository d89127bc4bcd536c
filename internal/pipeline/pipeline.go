// Package pipeline implements the Pipeline Orchestrator (spec §4.10,
// component C10): the single process() entry point that drives Stages
// 0-4, wiring together every other core component plus the consumed
// Loader/Resampler/Saver/EventSink capabilities of spec §6.
package pipeline

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"

	"github.com/linuxmatters/jivemaster/internal/cache"
	"github.com/linuxmatters/jivemaster/internal/config"
	"github.com/linuxmatters/jivemaster/internal/convolve"
	"github.com/linuxmatters/jivemaster/internal/correction"
	"github.com/linuxmatters/jivemaster/internal/dsp"
	"github.com/linuxmatters/jivemaster/internal/events"
	"github.com/linuxmatters/jivemaster/internal/fir"
	"github.com/linuxmatters/jivemaster/internal/level"
	"github.com/linuxmatters/jivemaster/internal/limiter"
	"github.com/linuxmatters/jivemaster/internal/segment"
	"github.com/linuxmatters/jivemaster/internal/spectral"
)

// Dependencies bundles the consumed external collaborators (spec §6).
type Dependencies struct {
	Loader    Loader
	Resampler Resampler
	Saver     Saver
	Cache     *cache.Cache // nil is allowed: advisory, safe to be absent
	Sink      events.Sink  // nil means events.DiscardSink{}
	Cancel    CancelToken  // nil means never cancelled
}

// Process is the engine's single entry point (spec §6):
//
//	process(target_source, reference_source, results, config, sink)
func Process(targetPath, referencePath string, results []ResultSpec, cfg config.Config, deps Dependencies) error {
	sink := deps.Sink
	if sink == nil {
		sink = events.DiscardSink{}
	}

	if err := checkCancel(deps.Cancel); err != nil {
		return err
	}

	// ---- Stage 0: loading & analysis ----
	events.Info(sink, events.CodeLoadingAnalysis)

	target, err := loadAndPrepare(targetPath, cfg, sink, deps, true)
	if err != nil {
		return err
	}
	reference, err := loadAndPrepare(referencePath, cfg, sink, deps, false)
	if err != nil {
		return err
	}
	if sameSignal(target, reference) {
		return newError(events.CodeTargetEqualsRef, nil)
	}

	// ---- Stage 0b: normalize reference ----
	events.Info(sink, events.CodeLoadingAnalysis)
	finalAmpCoef := normalizeReferencePeak(reference, cfg)

	if err := checkCancel(deps.Cancel); err != nil {
		return err
	}

	refBundle, err := referenceStatistics(reference, cfg, deps)
	if err != nil {
		return err
	}

	targetMid, targetSide := dsp.LRtoMS(target)
	targetMidLoud := segment.Select(targetMid, cfg.PieceSize())
	targetSideLoud := segment.Select(targetSide, cfg.PieceSize())
	if err := segment.Validate(targetMidLoud); err != nil {
		return newError(events.CodeInternalValidation, err)
	}

	// ---- Stage 1: matching levels ----
	events.Info(sink, events.CodeMatchingLevels)
	levelResult := level.Analyze(targetMidLoud, refBundle.RefMatchingRMSMid)
	if levelResult.Clamped {
		events.Warn(sink, events.CodeInternalValidation, "TARGET matching RMS below floor; clamped")
	}

	stage1Mid, stage1Side := level.Apply(targetMid, targetSide, levelResult.Coefficient)

	if err := checkCancel(deps.Cancel); err != nil {
		return err
	}

	// ---- Stage 2: matching frequencies ----
	events.Info(sink, events.CodeMatchingFrequency)
	workers := cfg.Workers

	tgtSpectrumMid := spectral.AverageMagnitude(stage1Mid, targetMidLoud, cfg.FFTSize, workers)
	tgtSpectrumSide := spectral.AverageMagnitude(stage1Side, targetSideLoud, cfg.FFTSize, workers)

	midFIR := fir.Synthesize(refBundle.RefAvgSpectrumMid, tgtSpectrumMid, cfg.InternalSampleRate, cfg)
	sideFIR := fir.Synthesize(refBundle.RefAvgSpectrumSide, tgtSpectrumSide, cfg.InternalSampleRate, cfg)

	stage2 := convolve.Stereo(stage1Mid, stage1Side, midFIR, sideFIR)

	if err := checkCancel(deps.Cancel); err != nil {
		return err
	}

	// ---- Stage 3: correcting levels ----
	events.Info(sink, events.CodeCorrectingLevels)
	hyrax := limiter.New(cfg.Limiter, cfg.InternalSampleRate)
	corrected, _ := correction.Run(stage2, refBundle.RefMatchingRMSMid, cfg, hyrax)

	if err := checkCancel(deps.Cancel); err != nil {
		return err
	}

	// ---- Stage 4: finalize ----
	events.Info(sink, events.CodeFinalizeSaving)
	for _, spec := range results {
		out := finalizeResult(corrected, spec, hyrax, finalAmpCoef, cfg)
		if spec.Preview {
			out = previewExcerpt(out, cfg, spec)
		}
		if deps.Saver != nil {
			if err := deps.Saver.Save(spec.Path, out, cfg.InternalSampleRate, spec.BitDepth); err != nil {
				return newError(events.CodeTargetStreamError, err)
			}
		}
	}

	events.Info(sink, events.CodeTaskComplete)
	return nil
}

func checkCancel(token CancelToken) error {
	if token != nil && token.Cancelled() {
		return Cancelled
	}
	return nil
}

// loadAndPrepare runs the Loader, validates bounds, promotes mono to
// stereo and resamples to the internal rate, per spec §4.10 Stage 0.
func loadAndPrepare(path string, cfg config.Config, sink events.Sink, deps Dependencies, isTarget bool) (dsp.Stereo, error) {
	codeTooShort, codeTooLong, codeTooManyCh, codeStreamErr, codePromoted, codeResampled, codeResampledWarn :=
		events.CodeTargetTooShort, events.CodeTargetTooLong, events.CodeTargetTooManyChans,
		events.CodeTargetStreamError, events.CodeTargetPromotedMono, events.CodeReferenceResampled,
		events.CodeTargetResampled
	if !isTarget {
		codeTooShort, codeTooLong, codeTooManyCh, codeStreamErr =
			events.CodeReferenceTooShort, events.CodeReferenceTooLong, events.CodeReferenceTooManyCh, events.CodeReferenceStreamErr
	}

	source, err := deps.Loader.Load(path)
	if err != nil {
		return dsp.Stereo{}, newError(codeStreamErr, err)
	}
	if len(source.Channels) == 0 || len(source.Channels[0]) == 0 {
		return dsp.Stereo{}, newError(codeStreamErr, errors.New("empty decode"))
	}
	if len(source.Channels) > 2 {
		return dsp.Stereo{}, newError(codeTooManyCh, nil)
	}

	channels := source.Channels
	if len(channels) == 1 {
		channels = [][]float64{channels[0], channels[0]}
		if isTarget {
			events.Info(sink, codePromoted)
		}
	}

	if source.SampleRate != cfg.InternalSampleRate {
		if deps.Resampler == nil {
			return dsp.Stereo{}, newError(codeStreamErr, errors.New("sample rate mismatch and no resampler configured"))
		}
		left, err := deps.Resampler.Resample(channels[0], source.SampleRate, cfg.InternalSampleRate)
		if err != nil {
			return dsp.Stereo{}, newError(codeStreamErr, err)
		}
		right, err := deps.Resampler.Resample(channels[1], source.SampleRate, cfg.InternalSampleRate)
		if err != nil {
			return dsp.Stereo{}, newError(codeStreamErr, err)
		}
		channels = [][]float64{left, right}
		if isTarget {
			events.Warn(sink, codeResampledWarn, "")
		} else {
			events.Info(sink, codeResampled)
		}
	}

	n := len(channels[0])
	if n < cfg.FFTSize {
		return dsp.Stereo{}, newError(codeTooShort, nil)
	}
	if int64(n) > cfg.MaxLengthSamples() {
		return dsp.Stereo{}, newError(codeTooLong, nil)
	}

	stereo := dsp.Stereo{L: dsp.Channel(channels[0]), R: dsp.Channel(channels[1])}
	if isTarget {
		det := dsp.DetectLimited(stereo.L, cfg)
		if det.Clipping {
			events.Warn(sink, events.CodeTargetClipping, "")
		} else if det.Limited {
			events.Warn(sink, events.CodeTargetLimited, "")
		}
	}
	return stereo, nil
}

func sameSignal(a, b dsp.Stereo) bool {
	if len(a.L) != len(b.L) {
		return false
	}
	for i := range a.L {
		if a.L[i] != b.L[i] || a.R[i] != b.R[i] {
			return false
		}
	}
	return true
}

// normalizeReferencePeak implements Stage 0b: if the REFERENCE peak is
// below config.LimitedMaximumPoint, normalize it up to that level and
// remember the inverse as final_amp_coef; otherwise final_amp_coef is 1.
func normalizeReferencePeak(reference dsp.Stereo, cfg config.Config) float64 {
	peak := math.Max(dsp.Peak(reference.L), dsp.Peak(reference.R))
	if peak >= config.LimitedMaximumPoint || peak < config.Epsilon {
		return 1
	}
	coef := config.LimitedMaximumPoint / peak
	dsp.AmplifyInPlace(reference.L, coef)
	dsp.AmplifyInPlace(reference.R, coef)
	return 1 / coef
}

// referenceStatistics fetches the REFERENCE's analysis bundle from cache
// (spec §4.9) or computes and persists it on a miss.
func referenceStatistics(reference dsp.Stereo, cfg config.Config, deps Dependencies) (cache.Bundle, error) {
	fp := fingerprint(reference, cfg)

	if deps.Cache != nil {
		if bundle, ok, err := deps.Cache.Lookup(fp); err != nil {
			return cache.Bundle{}, newError(events.CodeInternalValidation, err)
		} else if ok {
			return *bundle, nil
		}
	}

	mid, side := dsp.LRtoMS(reference)
	midLoud := segment.Select(mid, cfg.PieceSize())
	sideLoud := segment.Select(side, cfg.PieceSize())
	if err := segment.Validate(midLoud); err != nil {
		return cache.Bundle{}, newError(events.CodeInternalValidation, err)
	}

	bundle := cache.Bundle{
		RefMatchingRMSMid:  segment.MatchingRMS(midLoud),
		RefMatchingRMSSide: segment.MatchingRMS(sideLoud),
		RefAvgSpectrumMid:  spectral.AverageMagnitude(mid, midLoud, cfg.FFTSize, cfg.Workers),
		RefAvgSpectrumSide: spectral.AverageMagnitude(side, sideLoud, cfg.FFTSize, cfg.Workers),
		RefPeak:            math.Max(dsp.Peak(reference.L), dsp.Peak(reference.R)),
		RefSampleCount:     int64(len(reference.L)),
		InternalRate:       cfg.InternalSampleRate,
		FFTSize:            cfg.FFTSize,
		PieceSize:          cfg.PieceSize(),
	}

	if deps.Cache != nil {
		_ = deps.Cache.Store(fp, bundle) // advisory: a failed persist is not fatal
	}
	return bundle, nil
}

func fingerprint(reference dsp.Stereo, cfg config.Config) string {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, []float64(reference.L))
	_ = binary.Write(&buf, binary.LittleEndian, []float64(reference.R))
	return cache.Fingerprint(buf.Bytes(), cfg.InternalSampleRate, cfg.FFTSize, cfg.PieceSize(), cfg.LoessSpan)
}

// finalizeResult applies the limiter (unless spec.UseLimiter is false),
// the final_amp_coef and optional peak normalization, per spec §4.10
// Stage 4.
func finalizeResult(corrected dsp.Stereo, spec ResultSpec, hyrax *limiter.Hyrax, finalAmpCoef float64, cfg config.Config) dsp.Stereo {
	out := dsp.Stereo{L: append(dsp.Channel(nil), corrected.L...), R: append(dsp.Channel(nil), corrected.R...)}

	if spec.UseLimiter {
		limitedL, limitedR := hyrax.ProcessStereo(out.L, out.R)
		out = dsp.Stereo{L: limitedL, R: limitedR}
	}

	dsp.AmplifyInPlace(out.L, finalAmpCoef)
	dsp.AmplifyInPlace(out.R, finalAmpCoef)

	if spec.Normalize {
		peak := math.Max(dsp.Peak(out.L), dsp.Peak(out.R))
		if peak >= config.Epsilon {
			coef := config.LimitedMaximumPoint / peak
			dsp.AmplifyInPlace(out.L, coef)
			dsp.AmplifyInPlace(out.R, coef)
		}
	}
	return out
}

// previewExcerpt implements SPEC_FULL.md §9's preview definition: the
// first PreviewSize samples of the first loud piece.
func previewExcerpt(signal dsp.Stereo, cfg config.Config, spec ResultSpec) dsp.Stereo {
	size := spec.PreviewSize
	if size <= 0 {
		size = cfg.InternalSampleRate * 30 // default: 30s excerpt
	}

	mid, _ := dsp.LRtoMS(signal)
	loud := segment.Select(mid, cfg.PieceSize())
	start := 0
	if len(loud.Loud) > 0 {
		start = loud.Loud[0].Start
	}
	end := start + size
	if end > len(signal.L) {
		end = len(signal.L)
	}
	if start > end {
		start = end
	}
	return dsp.Stereo{L: signal.L[start:end], R: signal.R[start:end]}
}
