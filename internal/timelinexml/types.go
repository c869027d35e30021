package timelinexml

import "encoding/xml"

// Document is the <timeline> root element.
type Document struct {
	XMLName   xml.Name `xml:"timeline"`
	FrameRate string   `xml:"framerate,attr"`
	Groups    []Group  `xml:"group"`
}

// Group is a <group> element.
type Group struct {
	Type        string       `xml:"type,attr"`
	BitDepth    int          `xml:"bitdepth,attr,omitempty"`
	Width       int          `xml:"width,attr,omitempty"`
	Height      int          `xml:"height,attr,omitempty"`
	FrameRate   string       `xml:"framerate,attr,omitempty"`
	PreviewMode int          `xml:"previewmode,attr"`
	Tracks      []Track      `xml:"track"`
	Transitions []Transition `xml:"transition"`
}

// Track is a <track> element.
type Track struct {
	Clips       []Clip       `xml:"clip"`
	Transitions []Transition `xml:"transition"`
}

// Clip is a <clip> element. MStop is optional on input.
type Clip struct {
	Start  string `xml:"start,attr"`
	Stop   string `xml:"stop,attr"`
	Src    string `xml:"src,attr"`
	MStart string `xml:"mstart,attr"`
	MStop  string `xml:"mstop,attr,omitempty"`
}

// Transition is a <transition> element. From and To index clips within a
// track, or tracks within a group.
type Transition struct {
	Effect string  `xml:"effect,attr"`
	Start  string  `xml:"start,attr"`
	Stop   string  `xml:"stop,attr"`
	From   int     `xml:"from,attr"`
	To     int     `xml:"to,attr"`
	Params []Param `xml:"param"`
}

// Param is a <param name= value=> element.
type Param struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}
