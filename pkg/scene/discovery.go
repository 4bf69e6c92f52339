package scene

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownScene is returned when a scene ID names no built-in scene
var ErrUnknownScene = errors.New("unknown scene")

const (
	TypeBuiltin = "builtin"
	TypeFile    = "file"

	BuiltinGroup = "Built-in Scenes"
	FileGroup    = "Scene Files"
)

// Info describes a scene that can be rendered
type Info struct {
	ID          string // Unique identifier
	Name        string // Scene name
	Description string // Optional description
	Group       string // Grouping category
	Type        string // TypeBuiltin or TypeFile
	FilePath    string // Path to the scene file (file type only)
}

// Group is a named set of related scenes
type Group struct {
	Name   string
	Scenes []Info
}

// sceneExtensions are the file extensions recognized as scene descriptions
var sceneExtensions = []string{".yaml", ".yml"}

// ListSceneFiles scans dir for scene description files. A missing directory
// yields an empty list.
func ListSceneFiles(dir string) ([]Info, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	var scenes []Info
	for _, ext := range sceneExtensions {
		files, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		for _, filePath := range files {
			info, err := ParseSceneMetadata(filePath)
			if err != nil {
				// Keep going with the other files
				logger.Warningf("failed to parse metadata for %s: %v", filePath, err)
				continue
			}
			scenes = append(scenes, info)
		}
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParseSceneMetadata extracts metadata from the header comments of a scene file:
//
//	# Scene: Name
//	# Description: Text
//	# Group: Category
func ParseSceneMetadata(filePath string) (Info, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := Info{
		ID:       "file:" + nameWithoutExt,
		Name:     titleCase(nameWithoutExt),
		Group:    FileGroup,
		Type:     TypeFile,
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// Stop parsing at first non-comment line
		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		key, value, ok := strings.Cut(content, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Scene":
			info.Name = value
		case "Description":
			info.Description = value
		case "Group":
			info.Group = value
		}
	}

	return info, scanner.Err()
}

// ListAll returns built-in scenes and the scene files in dir, grouped by
// category with the built-in group first
func ListAll(dir string) ([]Group, error) {
	files, err := ListSceneFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list scene files: %w", err)
	}

	groupMap := make(map[string][]Info)
	for _, info := range append(Builtins(), files...) {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for name := range groupMap {
		if name != BuiltinGroup {
			groupNames = append(groupNames, name)
		}
	}
	sort.Strings(groupNames)

	var groups []Group
	if builtinScenes, ok := groupMap[BuiltinGroup]; ok {
		groups = append(groups, Group{Name: BuiltinGroup, Scenes: builtinScenes})
	}
	for _, name := range groupNames {
		groups = append(groups, Group{Name: name, Scenes: groupMap[name]})
	}
	return groups, nil
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

// IsSceneFile reports whether name has a scene description extension
func IsSceneFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range sceneExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
