package progress

import (
	"fmt"
	"strings"
	"time"
)

func (pdm *ProgressDisplayManager) displayLoop() {
	defer close(pdm.done)
	for {
		select {
		case <-pdm.ctx.Done():
			return
		case <-pdm.stopChan:
			return
		case <-pdm.displayTicker.C:
			pdm.displayProgress()
		case <-pdm.triggerDisplay:
			pdm.displayProgress()
		}
	}
}

// displayProgress logs the current state unless it equals the last line shown
func (pdm *ProgressDisplayManager) displayProgress() {
	pdm.mutex.Lock()
	defer pdm.mutex.Unlock()

	output := pdm.formatScanProgress(pdm.scanProgress.Info())
	if output != "" && output != pdm.lastDisplayed {
		pdm.logger.Info().Msg(output)
		pdm.lastDisplayed = output
	}
}

func (pdm *ProgressDisplayManager) formatScanProgress(info ProgressInfo) string {
	if info.Status == ProgressStatusIdle || info.Total <= 0 {
		return ""
	}

	var builder strings.Builder
	percentage := info.GetPercentage()
	builder.WriteString(fmt.Sprintf("Scanning hosts: %s %s %.1f%% (%d/%d) | ok:%d failed:%d scripts:%d",
		pdm.getStatusIcon(info.Status),
		pdm.createProgressBar(percentage, 20),
		percentage,
		info.Current,
		info.Total,
		info.Stats.Succeeded,
		info.Stats.Failed,
		info.Stats.ScriptsFound))

	if pdm.config.ShowETAEstimation && info.EstimatedETA > 0 && info.Status == ProgressStatusRunning {
		builder.WriteString(fmt.Sprintf(" | ETA: %s", pdm.formatDuration(info.EstimatedETA)))
	}

	if info.Message != "" {
		builder.WriteString(fmt.Sprintf(" | %s", info.Message))
	}

	return builder.String()
}

func (pdm *ProgressDisplayManager) getStatusIcon(status ProgressStatus) string {
	switch status {
	case ProgressStatusRunning:
		return "⏳"
	case ProgressStatusComplete:
		return "✅"
	case ProgressStatusInterrupted:
		return "🚫"
	default:
		return "💤"
	}
}

func (pdm *ProgressDisplayManager) createProgressBar(percentage float64, width int) string {
	if width <= 0 {
		return ""
	}

	filled := int((percentage / 100.0) * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s]", bar)
}

func (pdm *ProgressDisplayManager) formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
