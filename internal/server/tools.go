package server

import "github.com/ironsheep/dataset-aug/internal/config"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// toolOps maps every batch tool to the op it runs.
var toolOps = map[string]config.Op{
	"dataset_crop_items":       config.OpCropItems,
	"dataset_rotate":           config.OpRotate,
	"dataset_relabel":          config.OpRelabel,
	"dataset_strip_image_data": config.OpStripImageData,
	"dataset_split":            config.OpSplit,
	"dataset_mosaic":           config.OpMosaic,
	"dataset_paste":            config.OpPaste,
	"dataset_synthesize":       config.OpSynth,
	"dataset_stats":            config.OpStats,
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func stringList(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": description,
	}
}

// object builds an input schema from property groups. Later groups win on
// name clashes.
func object(required []string, groups ...map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{}
	for _, g := range groups {
		for k, v := range g {
			props[k] = v
		}
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Properties shared by every batch tool.
func commonProps() map[string]interface{} {
	return map[string]interface{}{
		"src_dirs":          stringList("Directories searched recursively for input files"),
		"dst_dir":           prop("string", "Output directory, created when missing"),
		"patterns":          stringList("Glob patterns matched against file names. Defaults to *.json for annotation ops and image extensions for composition ops"),
		"continue_on_error": prop("boolean", "Log and skip failing items instead of aborting the job"),
		"seed":              prop("integer", "Seed for this call only. Defaults to the session RNG"),
	}
}

func gridProps() map[string]interface{} {
	return map[string]interface{}{
		"num_to_gen": prop("integer", "Number of output images"),
		"width":      prop("integer", "Output width in pixels"),
		"height":     prop("integer", "Output height in pixels"),
		"rows":       prop("integer", "Grid rows"),
		"cols":       prop("integer", "Grid columns"),
		"jitter_x":   prop("integer", "Maximum horizontal tile offset inside its cell"),
		"jitter_y":   prop("integer", "Maximum vertical tile offset inside its cell"),
		"fill":       prop("string", `Background colour: a grey level ("114"), "r,g,b", a hex colour ("#336699") or "auto" for the dominant colour of the first tile. Default black`),
	}
}

func ringProps() map[string]interface{} {
	return map[string]interface{}{
		"layout": map[string]interface{}{
			"type":        "string",
			"enum":        []string{config.LayoutGrid, config.LayoutRing},
			"description": `"grid" (default) uses rows x cols cells. "ring" splits a square canvas 3x3: one tile fills a 2x2 corner block, five more fill the rest of the border. Rows, cols and jitter are ignored for rings`,
		},
		"ring_loc": prop("integer", "Corner of the big ring tile: 0 top-left, 1 top-right, 2 bottom-right, 3 bottom-left. Random per output when omitted"),
	}
}

func pasteProps() map[string]interface{} {
	return map[string]interface{}{
		"bg_dirs":        stringList("Background image directories. List a directory twice to draw from it twice as often"),
		"num_to_paste":   prop("integer", "Foreground items pasted per output"),
		"allow_overlap":  prop("boolean", "Allow pasted items to overlap existing rectangles"),
		"max_tries":      prop("integer", "Placement attempts per item before it is skipped. Default 20"),
		"overlap_margin": prop("number", "Pixels added around each placement for the overlap test"),
		"fg_groups": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"description": "Foreground directory groups. Each cell or output draws from one group",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "dataset_package_info",
			Description: "Load an image or labelme annotation file and report its size, annotation path and shape count per label.",
			InputSchema: object([]string{"path"}, map[string]interface{}{
				"path": prop("string", "Path to an image file or its .json annotation"),
			}),
		},
		{
			Name:        "dataset_preview",
			Description: "Render the rectangles and points of an annotated image into a new image file for inspection.",
			InputSchema: object([]string{"path", "output"}, map[string]interface{}{
				"path":   prop("string", "Path to an image file or its .json annotation"),
				"output": prop("string", "Preview image path. The format follows the extension"),
			}),
		},
		{
			Name:        "dataset_crop_items",
			Description: "Crop every rectangle annotation out of each annotated image, with optional margins, keeping the annotations that lie fully inside each crop.",
			InputSchema: object([]string{"src_dirs", "dst_dir"}, commonProps(), map[string]interface{}{
				"margins": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "integer"},
					"description": "Margins in pixels: one value for all sides or [top, bottom, left, right]",
				},
				"include": stringList("Only crop rectangles with these labels"),
				"exclude": stringList("Never crop rectangles with these labels"),
				"prefix":  prop("string", "Only crop rectangles whose label starts with this"),
				"suffix":  prop("string", "Only crop rectangles whose label ends with this"),
			}),
		},
		{
			Name:        "dataset_rotate",
			Description: "Rotate every annotated image and its annotations by a multiple of 90 degrees, clockwise positive.",
			InputSchema: object([]string{"src_dirs", "dst_dir", "degrees"}, commonProps(), map[string]interface{}{
				"degrees": map[string]interface{}{
					"type":        "integer",
					"enum":        []int{-90, 90, 180, 270},
					"description": "Clockwise rotation in degrees",
				},
			}),
		},
		{
			Name:        "dataset_relabel",
			Description: "Rewrite shape labels in annotation files by exact rename, then by the first matching prefix/suffix rule.",
			InputSchema: object([]string{"src_dirs", "dst_dir"}, commonProps(), map[string]interface{}{
				"rename": map[string]interface{}{
					"type":                 "object",
					"additionalProperties": map[string]interface{}{"type": "string"},
					"description":          "Exact label renames, old to new",
				},
				"rules": map[string]interface{}{
					"type": "array",
					"items": object([]string{"to"}, map[string]interface{}{
						"prefix": prop("string", "Label prefix to match"),
						"suffix": prop("string", "Label suffix to match"),
						"to":     prop("string", "Replacement label"),
					}),
					"description": "Prefix/suffix rules tried in order",
				},
			}),
		},
		{
			Name:        "dataset_strip_image_data",
			Description: "Rewrite annotation files in place with imageData set to null.",
			InputSchema: object([]string{"src_dirs"}, commonProps()),
		},
		{
			Name:        "dataset_split",
			Description: "Copy each annotated image into the directory of the first rule matching the prefix of its first label.",
			InputSchema: object([]string{"src_dirs", "splits"}, commonProps(), map[string]interface{}{
				"splits": map[string]interface{}{
					"type": "array",
					"items": object([]string{"prefix", "dir"}, map[string]interface{}{
						"prefix": prop("string", "Label prefix to match"),
						"dir":    prop("string", "Target directory, relative to dst_dir when not absolute"),
					}),
				},
			}),
		},
		{
			Name:        "dataset_mosaic",
			Description: "Build mosaic images from random annotated tiles laid out on a rows x cols grid with optional jitter, or in a six-tile ring.",
			InputSchema: object([]string{"src_dirs", "dst_dir", "num_to_gen", "width", "height"}, commonProps(), gridProps(), ringProps()),
		},
		{
			Name:        "dataset_paste",
			Description: "Paste randomly scaled and rotated foreground items onto random crops of background images, optionally without overlap.",
			InputSchema: object([]string{"bg_dirs", "dst_dir", "num_to_gen", "width", "height", "num_to_paste"}, commonProps(), pasteProps()),
		},
		{
			Name:        "dataset_synthesize",
			Description: "Build mosaics whose cells are background crops with foreground items pasted on them, one foreground group per cell.",
			InputSchema: object([]string{"bg_dirs", "fg_groups", "dst_dir", "num_to_gen", "width", "height", "rows", "cols", "num_to_paste"}, commonProps(), gridProps(), pasteProps()),
		},
		{
			Name:        "dataset_stats",
			Description: "Count shapes per label and per shape type over annotation files, optionally writing an HTML bar chart report.",
			InputSchema: object([]string{"src_dirs"}, commonProps(), map[string]interface{}{
				"output": prop("string", "Optional HTML report path"),
				"title":  prop("string", "Report title"),
			}),
		},
		{
			Name:        "dataset_run_job",
			Description: "Run every job of a JSON job file in order. A seed in the file replaces the session RNG for this call.",
			InputSchema: object([]string{"config"}, map[string]interface{}{
				"config": prop("string", "Path to the job file"),
			}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
