package cli

import (
	"fmt"
	"io"
	"strings"
)

// GenerateCompletion writes a completion script for shell ("bash", "zsh",
// "fish", "powershell" or "ps") that knows the cfcalc flags and the given
// calculator names.
func GenerateCompletion(out io.Writer, shell string, algorithms []string) error {
	var script, algoList string
	switch shell {
	case "bash":
		script, algoList = bashCompletion, strings.Join(algorithms, " ")
	case "zsh":
		script, algoList = zshCompletion, strings.Join(algorithms, " ")
	case "fish":
		script, algoList = fishCompletion, strings.Join(algorithms, " ")
	case "powershell", "ps":
		quoted := make([]string, len(algorithms))
		for i, algo := range algorithms {
			quoted[i] = "'" + algo + "'"
		}
		script, algoList = powerShellCompletion, strings.Join(quoted, ", ")
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
	_, err := fmt.Fprintf(out, script, algoList)
	return err
}

const bashCompletion = `# Bash completion script for cfcalc
# Add this to your ~/.bashrc or ~/.bash_completion

_cfcalc_completions() {
    local cur prev opts algorithms
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="--help -h --version -V --expr -x -y --op --algo --precision --timeout -v -d --details --json --server --port --max-bits --cache-size --trusted-proxies --no-color --theme --output -o --quiet -q --interactive --completion --calculate -c"

    algorithms="%s all"

    case "${prev}" in
        --algo)
            COMPREPLY=( $(compgen -W "${algorithms}" -- "${cur}") )
            return 0
            ;;
        --op)
            COMPREPLY=( $(compgen -W "add sub mul div" -- "${cur}") )
            return 0
            ;;
        --theme)
            COMPREPLY=( $(compgen -W "dark light none" -- "${cur}") )
            return 0
            ;;
        --completion)
            COMPREPLY=( $(compgen -W "bash zsh fish powershell" -- "${cur}") )
            return 0
            ;;
        --output|-o)
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
        --port)
            COMPREPLY=( $(compgen -W "8080 3000 5000 9000" -- "${cur}") )
            return 0
            ;;
        --timeout)
            COMPREPLY=( $(compgen -W "10s 30s 1m 5m" -- "${cur}") )
            return 0
            ;;
        --precision)
            COMPREPLY=( $(compgen -W "8 16 24 32 53 64" -- "${cur}") )
            return 0
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _cfcalc_completions cfcalc
`

const zshCompletion = `#compdef cfcalc

# Zsh completion script for cfcalc
# Add this to your ~/.zshrc or place in $fpath

_cfcalc() {
    local -a algorithms
    algorithms=(%s all)

    _arguments -s \
        '(-h --help)'{-h,--help}'[Show help message]' \
        '(-V --version)'{-V,--version}'[Show version information]' \
        '--expr[Expression to evaluate]:expression:' \
        '-x[Left operand]:operand:' \
        '-y[Right operand]:operand:' \
        '--op[Operation applied to -x and -y]:operation:(add sub mul div)' \
        '--algo[Calculator to use]:algorithm:($algorithms)' \
        '--precision[Bit budget of the rounded value]:bits:(8 16 24 32 53 64)' \
        '--timeout[Maximum execution time]:duration:(10s 30s 1m 5m)' \
        '-v[Display every term]' \
        '(-d --details)'{-d,--details}'[Show convergents and metadata]' \
        '--json[Output in JSON format]' \
        '--server[Start HTTP server mode]' \
        '--port[Server port]:port:(8080 3000 5000 9000)' \
        '--max-bits[Maximum operand size in server mode]:bits:' \
        '--cache-size[Server result cache size]:entries:' \
        '--trusted-proxies[Proxies allowed to set X-Forwarded-For]:cidrs:' \
        '--no-color[Disable colored output]' \
        '--theme[Color theme]:theme:(dark light none)' \
        '(-o --output)'{-o,--output}'[Output file path]:file:_files' \
        '(-q --quiet)'{-q,--quiet}'[Quiet mode for scripts]' \
        '--interactive[Start interactive REPL mode]' \
        '--completion[Generate completion script]:shell:(bash zsh fish powershell)' \
        '(-c --calculate)'{-c,--calculate}'[Display the calculated value]'
}

_cfcalc "$@"
`

const fishCompletion = `# Fish completion script for cfcalc
# Add this to ~/.config/fish/completions/cfcalc.fish

complete -c cfcalc -f

complete -c cfcalc -s h -l help -d 'Show help message'
complete -c cfcalc -s V -l version -d 'Show version information'

# Expression
complete -c cfcalc -l expr -d 'Expression to evaluate' -x
complete -c cfcalc -s x -d 'Left operand' -x
complete -c cfcalc -s y -d 'Right operand' -x
complete -c cfcalc -l op -d 'Operation applied to -x and -y' -xa 'add sub mul div'
complete -c cfcalc -l algo -d 'Calculator to use' -xa '%s all'
complete -c cfcalc -l precision -d 'Bit budget of the rounded value' -xa '8 16 24 32 53 64'
complete -c cfcalc -l timeout -d 'Maximum execution time' -xa '10s 30s 1m 5m'

# Output options
complete -c cfcalc -s v -d 'Display every term'
complete -c cfcalc -s d -l details -d 'Show convergents and metadata'
complete -c cfcalc -s c -l calculate -d 'Display the calculated value'
complete -c cfcalc -l json -d 'Output in JSON format'
complete -c cfcalc -s o -l output -d 'Output file path' -rF
complete -c cfcalc -s q -l quiet -d 'Quiet mode for scripts'
complete -c cfcalc -l no-color -d 'Disable colored output'
complete -c cfcalc -l theme -d 'Color theme' -xa 'dark light none'

# Server mode
complete -c cfcalc -l server -d 'Start HTTP server mode'
complete -c cfcalc -l port -d 'Server port' -xa '8080 3000 5000 9000'
complete -c cfcalc -l max-bits -d 'Maximum operand size in server mode' -x
complete -c cfcalc -l cache-size -d 'Server result cache size' -x
complete -c cfcalc -l trusted-proxies -d 'Proxies allowed to set X-Forwarded-For' -x

complete -c cfcalc -l interactive -d 'Start interactive REPL mode'
complete -c cfcalc -l completion -d 'Generate completion script' -xa 'bash zsh fish powershell'
`

const powerShellCompletion = `# PowerShell completion script for cfcalc
# Add this to your $PROFILE

$cfcalcAlgorithms = @(%s, 'all')

Register-ArgumentCompleter -CommandName 'cfcalc' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
        @{Name = '-h'; Description = 'Show help message' }
        @{Name = '--help'; Description = 'Show help message' }
        @{Name = '-V'; Description = 'Show version information' }
        @{Name = '--version'; Description = 'Show version information' }
        @{Name = '--expr'; Description = 'Expression to evaluate' }
        @{Name = '-x'; Description = 'Left operand' }
        @{Name = '-y'; Description = 'Right operand' }
        @{Name = '--op'; Description = 'Operation applied to -x and -y' }
        @{Name = '--algo'; Description = 'Calculator to use' }
        @{Name = '--precision'; Description = 'Bit budget of the rounded value' }
        @{Name = '--timeout'; Description = 'Maximum execution time' }
        @{Name = '-v'; Description = 'Display every term' }
        @{Name = '-d'; Description = 'Show convergents and metadata' }
        @{Name = '--details'; Description = 'Show convergents and metadata' }
        @{Name = '-c'; Description = 'Display the calculated value' }
        @{Name = '--calculate'; Description = 'Display the calculated value' }
        @{Name = '--json'; Description = 'Output in JSON format' }
        @{Name = '--server'; Description = 'Start HTTP server mode' }
        @{Name = '--port'; Description = 'Server port' }
        @{Name = '--max-bits'; Description = 'Maximum operand size in server mode' }
        @{Name = '--cache-size'; Description = 'Server result cache size' }
        @{Name = '--trusted-proxies'; Description = 'Proxies allowed to set X-Forwarded-For' }
        @{Name = '--no-color'; Description = 'Disable colored output' }
        @{Name = '--theme'; Description = 'Color theme' }
        @{Name = '-o'; Description = 'Output file path' }
        @{Name = '--output'; Description = 'Output file path' }
        @{Name = '-q'; Description = 'Quiet mode for scripts' }
        @{Name = '--quiet'; Description = 'Quiet mode for scripts' }
        @{Name = '--interactive'; Description = 'Start interactive REPL mode' }
        @{Name = '--completion'; Description = 'Generate completion script' }
    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    switch ($prevElement) {
        '--algo' {
            $cfcalcAlgorithms | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }
        '--op' {
            @('add', 'sub', 'mul', 'div') | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }
        '--theme' {
            @('dark', 'light', 'none') | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }
        '--completion' {
            @('bash', 'zsh', 'fish', 'powershell') | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }
        '--timeout' {
            @('10s', '30s', '1m', '5m') | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }
        '--port' {
            @('8080', '3000', '5000', '9000') | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }
    }

    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`
