package tray

import "fyne.io/fyne/v2"

// SVG content for the tray and window icon: a text caret over a check mark.
const SVGContent = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <rect x="1.5" y="2" width="13" height="12" rx="2" fill="#ffffff" stroke="#0078d4" stroke-width="1.2"/>
  <line x1="4" y1="5" x2="12" y2="5" stroke="#999999" stroke-width="1"/>
  <line x1="4" y1="7.5" x2="9" y2="7.5" stroke="#999999" stroke-width="1"/>
  <path d="M5 10.5 L7 12.5 L11.5 8" fill="none" stroke="#107c10" stroke-width="1.6" stroke-linecap="round" stroke-linejoin="round"/>
</svg>`

// Icon is the application icon as a fyne resource.
var Icon fyne.Resource = fyne.NewStaticResource("fixtext.svg", []byte(SVGContent))
